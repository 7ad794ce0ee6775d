package autofill

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lastfm"
)

const (
	// maxSimilarArtists caps the similar-artist list fetched for a seed.
	maxSimilarArtists = 30
	// topTracksPerSimilar caps the top tracks fetched per similar artist.
	topTracksPerSimilar = 5
	// fallbackPerArtist caps how many library tracks the broader per-artist
	// search may contribute when no exact top-track match exists.
	fallbackPerArtist = 3
	// genreBatchSize is how many station genres each genre-station pass scans.
	genreBatchSize = 15
	// candidateSurplus is the oversampling factor for genre stations: the
	// scan stops early once targetCount*candidateSurplus candidates exist.
	candidateSurplus = 5
)

// ErrNoCandidates is returned when a collection pass produced nothing to add.
var ErrNoCandidates = errors.New("no candidate tracks found")

// Library is the library lookup surface the collector needs.
type Library interface {
	FindByArtistTitle(artist, title string) ([]library.Track, error)
	FindByArtist(artist string) ([]library.Track, error)
	FindByGenre(genre string) ([]library.Track, error)
	TrackGenre(uri string) (string, error)
}

// Similarity is the recommendation surface the collector needs.
type Similarity interface {
	SimilarArtists(artist string, limit int) ([]lastfm.SimilarArtist, error)
	TopTracks(artist string, limit int) ([]lastfm.TopTrack, error)
}

// Collector gathers candidate tracks from the local library, guided by
// external similarity data.
type Collector struct {
	library    Library
	similarity Similarity
}

// NewCollector creates a collector over the given library and similarity
// sources.
func NewCollector(lib Library, sim Similarity) *Collector {
	return &Collector{library: lib, similarity: sim}
}

// Collect gathers candidates seeded from one artist: the seed's own top
// tracks, then top tracks of up to maxSimilarArtists similar artists, each
// resolved against the library by exact artist+title match with a broader
// per-artist search as fallback. When filterGenre is non-empty only tracks
// whose genre matches it are admitted. Candidates are deduplicated by URI
// and each (artist, title) pair is looked up at most once.
func (c *Collector) Collect(seedArtist, filterGenre string, targetCount int) ([]library.Track, error) {
	if seedArtist == "" {
		return nil, errors.New("no seed artist")
	}

	state := newCollectState(filterGenre)

	seedTop, err := c.similarity.TopTracks(seedArtist, targetCount)
	if err != nil {
		if errors.Is(err, lastfm.ErrNotConfigured) {
			return nil, err
		}
		log.Warn().Err(err).Str("artist", seedArtist).Msg("Could not fetch seed top tracks")
	}
	for _, top := range seedTop {
		c.resolveTopTrack(state, seedArtist, top.Title)
	}

	similar, err := c.similarity.SimilarArtists(seedArtist, maxSimilarArtists)
	if err != nil {
		if len(state.candidates) == 0 {
			return nil, fmt.Errorf("fetch similar artists for %q: %w", seedArtist, err)
		}
		log.Warn().Err(err).Str("artist", seedArtist).Msg("Could not fetch similar artists")
	}

	for _, sim := range similar {
		top, err := c.similarity.TopTracks(sim.Name, topTracksPerSimilar)
		if err != nil {
			log.Debug().Err(err).Str("artist", sim.Name).Msg("Skipping similar artist")
			continue
		}
		for _, t := range top {
			c.resolveTopTrack(state, sim.Name, t.Title)
		}
		// Top up from the artist's full catalog while the pool is still
		// short of the requested count.
		if len(state.candidates) < targetCount {
			c.fallbackByArtist(state, sim.Name)
		}
	}

	if len(state.candidates) == 0 {
		return nil, ErrNoCandidates
	}
	log.Info().Str("seed", seedArtist).Int("candidates", len(state.candidates)).
		Msg("Collected similarity candidates")
	return state.candidates, nil
}

// CollectByGenre gathers candidates for a genre station. Station genres are
// curated, so each one is queried with an exact library lookup, no fuzzy
// matching. The shuffled genre list is scanned in batches of genreBatchSize
// and the scan stops, mid-batch if need be, once
// targetCount*candidateSurplus candidates exist.
func (c *Collector) CollectByGenre(stationGenres []string, targetCount int) ([]library.Track, error) {
	if len(stationGenres) == 0 {
		return nil, errors.New("no station genres")
	}

	genres := make([]string, len(stationGenres))
	copy(genres, stationGenres)
	rand.Shuffle(len(genres), func(i, j int) {
		genres[i], genres[j] = genres[j], genres[i]
	})

	limit := targetCount * candidateSurplus
	state := newCollectState("")

scan:
	for start := 0; start < len(genres); start += genreBatchSize {
		end := start + genreBatchSize
		if end > len(genres) {
			end = len(genres)
		}
		for _, genre := range genres[start:end] {
			tracks, err := c.library.FindByGenre(genre)
			if err != nil {
				log.Warn().Err(err).Str("genre", genre).Msg("Genre scan failed, skipping")
				continue
			}
			for _, t := range tracks {
				state.admit(t)
			}
			if len(state.candidates) >= limit {
				log.Debug().Int("candidates", len(state.candidates)).Int("limit", limit).
					Msg("Genre scan stopped early")
				break scan
			}
		}
	}

	if len(state.candidates) == 0 {
		return nil, ErrNoCandidates
	}
	log.Info().Strs("genres", stationGenres).Int("candidates", len(state.candidates)).
		Msg("Collected genre station candidates")
	return state.candidates, nil
}

// resolveTopTrack looks one (artist, title) recommendation up in the library
// and admits the first match. It reports whether a track was admitted.
func (c *Collector) resolveTopTrack(state *collectState, artist, title string) bool {
	if !state.markProcessed(artist, title) {
		return false
	}
	found, err := c.library.FindByArtistTitle(artist, title)
	if err != nil {
		log.Debug().Err(err).Str("artist", artist).Str("title", title).
			Msg("Library lookup failed")
		return false
	}
	for _, t := range found {
		if c.admitFiltered(state, t) {
			return true
		}
	}
	return false
}

// fallbackByArtist admits up to fallbackPerArtist random library tracks by
// an artist whose recommended top tracks are not in the library.
func (c *Collector) fallbackByArtist(state *collectState, artist string) {
	found, err := c.library.FindByArtist(artist)
	if err != nil || len(found) == 0 {
		return
	}
	rand.Shuffle(len(found), func(i, j int) {
		found[i], found[j] = found[j], found[i]
	})
	added := 0
	for _, t := range found {
		if added >= fallbackPerArtist {
			break
		}
		if c.admitFiltered(state, t) {
			added++
		}
	}
}

// admitFiltered applies the genre filter, resolving the genre from the
// library when the track record carries none. A failed genre lookup excludes
// the track rather than admitting it unchecked.
func (c *Collector) admitFiltered(state *collectState, t library.Track) bool {
	if state.filterGenre != "" {
		genre := t.Genre
		if genre == "" {
			var err error
			genre, err = c.library.TrackGenre(t.URI)
			if err != nil {
				log.Debug().Err(err).Str("uri", t.URI).Msg("Genre lookup failed, excluding track")
				return false
			}
		}
		if !MatchGenre(genre, state.filterGenre) {
			return false
		}
	}
	return state.admit(t)
}

type collectState struct {
	filterGenre string
	candidates  []library.Track
	seen        map[string]struct{}
	processed   map[string]struct{}
}

func newCollectState(filterGenre string) *collectState {
	return &collectState{
		filterGenre: filterGenre,
		seen:        make(map[string]struct{}),
		processed:   make(map[string]struct{}),
	}
}

// markProcessed records an (artist, title) pair and reports whether it was
// new. Pairs are matched case-insensitively.
func (s *collectState) markProcessed(artist, title string) bool {
	key := strings.ToLower(artist) + "\x00" + strings.ToLower(title)
	if _, ok := s.processed[key]; ok {
		return false
	}
	s.processed[key] = struct{}{}
	return true
}

// admit adds a track unless its URI was already collected.
func (s *collectState) admit(t library.Track) bool {
	if t.URI == "" {
		return false
	}
	if _, ok := s.seen[t.URI]; ok {
		return false
	}
	s.seen[t.URI] = struct{}{}
	s.candidates = append(s.candidates, t)
	return true
}
