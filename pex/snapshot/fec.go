package snapshot

import (
	"errors"

	"github.com/klauspost/reedsolomon"
)

var (
	ErrTooManyLost   = errors.New("snapshot: too many shards lost, cannot recover")
	ErrInvalidShards = errors.New("snapshot: invalid data/parity configuration")
)

// ShardConfig controls forward error correction for snapshot distribution.
// Up to Parity shards may be lost and the snapshot still reassembles.
type ShardConfig struct {
	Data   int
	Parity int
}

// DefaultShardConfig tolerates the loss of a quarter of the shards.
func DefaultShardConfig() ShardConfig {
	return ShardConfig{Data: 8, Parity: 2}
}

// ShardSet is a snapshot split into Reed-Solomon shards. Carriers send the
// shards individually (tagged with their index); receivers set missing
// shards to nil before reassembling.
type ShardSet struct {
	Config ShardConfig
	Size   int // snapshot length before shard padding
	Shards [][]byte
}

// Shard splits an encoded snapshot into cfg.Data data shards and computes
// cfg.Parity parity shards.
func Shard(snap []byte, cfg ShardConfig) (*ShardSet, error) {
	if cfg.Data <= 0 || cfg.Parity <= 0 {
		return nil, ErrInvalidShards
	}
	enc, err := reedsolomon.New(cfg.Data, cfg.Parity)
	if err != nil {
		return nil, err
	}
	shards, err := enc.Split(snap)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(shards); err != nil {
		return nil, err
	}
	return &ShardSet{Config: cfg, Size: len(snap), Shards: shards}, nil
}

// Missing reports how many shards are currently absent.
func (s *ShardSet) Missing() int {
	n := 0
	for _, sh := range s.Shards {
		if sh == nil {
			n++
		}
	}
	return n
}

// Reassemble reconstructs any missing data shards and returns the original
// snapshot bytes. Returns ErrTooManyLost when more than Config.Parity
// shards are gone.
func (s *ShardSet) Reassemble() ([]byte, error) {
	enc, err := reedsolomon.New(s.Config.Data, s.Config.Parity)
	if err != nil {
		return nil, err
	}
	if err := enc.ReconstructData(s.Shards); err != nil {
		if err == reedsolomon.ErrTooFewShards {
			return nil, ErrTooManyLost
		}
		return nil, err
	}

	out := make([]byte, 0, s.Size)
	for i := 0; i < s.Config.Data && len(out) < s.Size; i++ {
		remaining := s.Size - len(out)
		if remaining >= len(s.Shards[i]) {
			out = append(out, s.Shards[i]...)
		} else {
			out = append(out, s.Shards[i][:remaining]...)
		}
	}
	return out, nil
}
