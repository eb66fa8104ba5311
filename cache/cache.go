// Package cache stores computed snapshots keyed by a fingerprint of the
// computation inputs, so that an unchanged request is never computed twice.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/etnz/performance"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Store holds encoded snapshots.
type Store interface {
	// Get returns the snapshot stored under key. ok is false when there is none.
	Get(ctx context.Context, key string) (s *performance.PortfolioSnapshot, ok bool, err error)
	// Put stores s under key, replacing any previous value.
	Put(ctx context.Context, key string, s *performance.PortfolioSnapshot) error
}

// version is part of every fingerprint. Bump it when the computation changes.
const version = "perf-v1"

// Fingerprint returns a key identifying the inputs of a computation. It does
// not depend on the order of activities.
func Fingerprint(cfg performance.Config, activities []performance.Activity, market *performance.MarketData) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", version)

	j, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("cannot fingerprint configuration: %w", err)
	}
	h.Write(j)
	h.Write([]byte{'\n'})

	lines := make([]string, 0, len(activities))
	for _, a := range activities {
		var buf bytes.Buffer
		if err := performance.EncodeActivities(&buf, []performance.Activity{a}); err != nil {
			return "", fmt.Errorf("cannot fingerprint activities: %w", err)
		}
		lines = append(lines, buf.String())
	}
	slices.Sort(lines)
	for _, l := range lines {
		h.Write([]byte(l))
	}

	if market != nil {
		if err := performance.EncodeMarketData(h, market); err != nil {
			return "", fmt.Errorf("cannot fingerprint market data: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Marshal encodes a snapshot with msgpack, using the json field names.
func Marshal(s *performance.PortfolioSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("cannot encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot encoded by Marshal.
func Unmarshal(data []byte) (*performance.PortfolioSnapshot, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var s performance.PortfolioSnapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("cannot decode snapshot: %w", err)
	}
	return &s, nil
}

// Compute returns the snapshot stored under key, or computes and stores it.
// hit reports whether the result came from the store. A failing store is
// logged and bypassed.
func Compute(ctx context.Context, store Store, key string, log zerolog.Logger, compute func() (*performance.PortfolioSnapshot, error)) (s *performance.PortfolioSnapshot, hit bool, err error) {
	log = log.With().Str("component", "cache").Str("key", key[:min(12, len(key))]).Logger()
	if s, ok, err := store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("cache read failed")
	} else if ok {
		log.Debug().Msg("cache hit")
		return s, true, nil
	}

	s, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := store.Put(ctx, key, s); err != nil {
		log.Warn().Err(err).Msg("cache write failed")
	}
	log.Debug().Msg("cache miss")
	return s, false, nil
}
