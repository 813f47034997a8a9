package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pepco/internal/storage"
)

const lastSyncKey = "reference.last_sync"

type SyncService struct {
	db     *storage.DB
	source Source
	logger *slog.Logger
}

type SyncResult struct {
	Counts   map[Kind]int
	SyncedAt time.Time
}

func NewSyncService(db *storage.DB, source Source, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{db: db, source: source, logger: logger}
}

// Sync fetches every table, validates it and stores it as the newest
// snapshot. Nothing is stored unless all tables load.
func (s *SyncService) Sync(ctx context.Context) (SyncResult, error) {
	payloads := map[Kind][]byte{}
	res := SyncResult{Counts: map[Kind]int{}}

	for _, kind := range Kinds {
		rows, err := s.source.Fetch(ctx, kind)
		if err != nil {
			return res, fmt.Errorf("fetch %s: %w", kind, err)
		}
		value, n, err := decodeKind(kind, rows)
		if err != nil {
			return res, fmt.Errorf("decode %s: %w", kind, err)
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return res, err
		}
		if err := ValidateSnapshot(kind, payload); err != nil {
			return res, err
		}
		payloads[kind] = payload
		res.Counts[kind] = n
	}

	for _, kind := range Kinds {
		if err := s.db.SaveReferenceSnapshot(string(kind), payloads[kind]); err != nil {
			return res, err
		}
	}
	res.SyncedAt = time.Now().UTC()
	if err := s.db.SetMetadata(lastSyncKey, res.SyncedAt.Format(time.RFC3339)); err != nil {
		return res, err
	}
	s.logger.Info("reference.sync.ok", "prices", res.Counts[KindPrices], "translations", res.Counts[KindTranslations], "materials", res.Counts[KindMaterials])
	return res, nil
}

// LastSync returns the time of the last successful sync, if any.
func (s *SyncService) LastSync() (time.Time, bool, error) {
	v, err := s.db.GetMetadata(lastSyncKey)
	if err != nil || v == nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func decodeKind(kind Kind, rows [][]string) (any, int, error) {
	switch kind {
	case KindPrices:
		ladder, err := DecodePriceLadder(rows)
		if err != nil {
			return nil, 0, err
		}
		n := 0
		for _, v := range ladder {
			n = max(n, len(v))
		}
		return ladder, n, nil
	case KindTranslations:
		tr, err := DecodeTranslations(rows)
		return tr, len(tr), err
	case KindMaterials:
		m, err := DecodeMaterials(rows)
		return m, len(m), err
	default:
		return nil, 0, fmt.Errorf("unknown table kind %s", kind)
	}
}
