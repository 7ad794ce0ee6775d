package autofill

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
)

// Queue is the playback queue surface the engine needs.
type Queue interface {
	Add(uri string) error
	Clear() error
}

// Engine turns a candidate list into queue additions.
type Engine struct {
	queue Queue
}

// NewEngine creates a fill engine over the given queue.
func NewEngine(queue Queue) *Engine {
	return &Engine{queue: queue}
}

// Fill shuffles the candidates and enqueues at most numTracks of them.
// Individual add failures are logged and skipped; the next candidate takes
// the failed one's slot. It returns how many tracks were actually added.
func (e *Engine) Fill(candidates []library.Track, numTracks int) int {
	if numTracks <= 0 || len(candidates) == 0 {
		return 0
	}

	shuffled := append([]library.Track(nil), candidates...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	added := 0
	for _, t := range shuffled {
		if added >= numTracks {
			break
		}
		if err := e.queue.Add(t.URI); err != nil {
			log.Warn().Err(err).Str("uri", t.URI).Msg("Could not enqueue track")
			continue
		}
		log.Debug().Str("artist", t.Artist).Str("title", t.Title).Msg("Enqueued track")
		added++
	}

	log.Info().Int("added", added).Int("requested", numTracks).
		Int("candidates", len(candidates)).Msg("Queue fill finished")
	return added
}
