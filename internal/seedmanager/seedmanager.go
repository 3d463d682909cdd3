// Package seedmanager implements SeedManager (spec §4.7): a FIFO buffer
// in front of a Map, draining peer results into blocking clauses before
// every draw. Grounded on original_source/MarcoPolo.py's SeedManager,
// extended with the peer-channel drain spec §4.7/§5 ask for (the
// original's single-process version has no peers to drain).
package seedmanager

import (
	"sync"

	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/result"
)

type queueItem struct {
	seed         []int
	knownOptimal bool
}

// SeedManager hands (seed, knownOptimal) pairs to an engine: injected
// seeds first, then fresh draws from the Map, until both are exhausted.
type SeedManager struct {
	m     mapsolver.Map
	peers <-chan result.Result
	// ignore mirrors --comms-ignore (SPEC_FULL.md §4): still drain the
	// peer channel so it never backs up, but never apply what arrives.
	ignore bool

	mu       sync.Mutex
	injected []queueItem
}

// New builds a SeedManager over m. peers may be nil for a single-worker
// run with no cross-peer traffic.
func New(m mapsolver.Map, peers <-chan result.Result, ignore bool) *SeedManager {
	return &SeedManager{m: m, peers: peers, ignore: ignore}
}

// AddSeed injects a seed ahead of anything the Map would otherwise draw
// next — the hook a coordinator or an mssguided-style optimization
// would use to fast-track an already-known-interesting region.
func (s *SeedManager) AddSeed(seed []int, knownOptimal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injected = append(s.injected, queueItem{seed: seed, knownOptimal: knownOptimal})
}

// Next returns the next (seed, knownOptimal) pair, or ok=false once both
// the injected queue and the Map are exhausted. Peer results are always
// drained first (spec §4.7: "before drawing a new seed from Map").
func (s *SeedManager) Next() ([]int, bool, bool) {
	s.drainPeers()

	s.mu.Lock()
	if len(s.injected) > 0 {
		item := s.injected[0]
		s.injected = s.injected[1:]
		s.mu.Unlock()
		return item.seed, item.knownOptimal, true
	}
	s.mu.Unlock()

	seed, ok := s.m.NextSeed()
	return seed, false, ok
}

// drainPeers applies every result currently buffered on the peer
// channel as a blocking clause in the local Map, never blocking when
// the channel is empty — the non-busy-polling multiplexing spec §5
// asks for at the seed boundary.
func (s *SeedManager) drainPeers() {
	if s.peers == nil {
		return
	}
	for {
		select {
		case r, ok := <-s.peers:
			if !ok {
				s.peers = nil
				return
			}
			if s.ignore {
				continue
			}
			switch r.Kind {
			case result.MUS:
				s.m.BlockUp(r.Set)
			case result.MSS:
				s.m.BlockDown(r.Set)
			}
		default:
			return
		}
	}
}
