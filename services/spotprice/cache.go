package spotprice

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"flickprice/lib/scrapers/flick"
)

// on-disk price record, shared format with the original tooling
type priceRecord struct {
	CurrentPrice float64 `json:"current_price"`
	EndAt        string  `json:"end_at"`
}

// priceCache persists the last fetched price together with the end of
// its validity window. Both fields are always written together, a
// record is never partially updated.
type priceCache struct {
	path string
}

// Load returns the cached record. Absent, unreadable and corrupt files
// all read as a miss; corruption is logged since it is unexpected.
func (c priceCache) Load() (flick.Snapshot, bool) {
	contents, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("price cache is unreadable", "file", c.path, "err", err)
		}
		return flick.Snapshot{}, false
	}

	var record priceRecord
	err = json.Unmarshal(contents, &record)
	if err != nil {
		slog.Warn("price cache is corrupt, ignoring it", "file", c.path, "err", err)
		return flick.Snapshot{}, false
	}
	endAt, err := time.Parse(flick.PeriodTimeFormat, record.EndAt)
	if err != nil {
		slog.Warn("price cache has a bad end time, ignoring it", "file", c.path, "err", err)
		return flick.Snapshot{}, false
	}

	return flick.Snapshot{
		Price: record.CurrentPrice,
		EndAt: endAt,
	}, true
}

func (c priceCache) Store(snap flick.Snapshot) error {
	contents, err := json.Marshal(priceRecord{
		CurrentPrice: snap.Price,
		EndAt:        snap.EndAt.UTC().Format(flick.PeriodTimeFormat),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, contents, 0o600)
}
