package flick

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrMalformedPage = fmt.Errorf("the page did not contain a readable spot price")

// PeriodTimeFormat is how the dashboard reports the end of the current
// pricing period, always UTC.
const PeriodTimeFormat = "2006-01-02T15:04:05Z"

const needleSelector = "div[data-react-class=FlickNeedle]"

// Snapshot is the spot price for the current pricing period.
type Snapshot struct {
	// cents
	Price float64
	// when this price stops being authoritative
	EndAt time.Time
}

// priceValue tolerates both a JSON number and a numeric string, the
// dashboard has served the price both ways.
type priceValue float64

func (p *priceValue) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*p = priceValue(value)
	return nil
}

type needleProps struct {
	CurrentPeriod struct {
		Price struct {
			Value *priceValue `json:"value"`
		} `json:"price"`
		EndAt string `json:"end_at"`
	} `json:"currentPeriod"`
}

// ExtractSnapshot pulls the current price and period end out of the
// needle gauge embedded in the dashboard page. Any shape the page
// takes other than the expected one is ErrMalformedPage, there is no
// safe default price.
func ExtractSnapshot(body []byte) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	props, ok := doc.Find(needleSelector).Attr("data-react-props")
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: missing needle element", ErrMalformedPage)
	}

	var parsed needleProps
	err = json.Unmarshal([]byte(props), &parsed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if parsed.CurrentPeriod.Price.Value == nil {
		return Snapshot{}, fmt.Errorf("%w: missing current period price", ErrMalformedPage)
	}
	if parsed.CurrentPeriod.EndAt == "" {
		return Snapshot{}, fmt.Errorf("%w: missing current period end", ErrMalformedPage)
	}

	endAt, err := time.Parse(PeriodTimeFormat, parsed.CurrentPeriod.EndAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	return Snapshot{
		Price: float64(*parsed.CurrentPeriod.Price.Value),
		EndAt: endAt,
	}, nil
}
