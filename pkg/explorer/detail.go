package explorer

import (
	"context"
	"fmt"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// CharacterDetail is a character with a preview of its first episodes.
type CharacterDetail struct {
	Character *catalog.Character

	// Episodes is the resolved preview. Empty when EpisodesErr is set.
	Episodes    []catalog.Episode
	EpisodesErr error

	// TotalEpisodes is how many episodes the character appears in.
	TotalEpisodes int

	// HasMore is true when the preview does not cover every episode.
	HasMore bool
}

// CharacterDetail fetches a character and previews its first episodes.
// The preview is all-or-nothing; its failure is reported in EpisodesErr and
// does not fail the call.
func (e *Explorer) CharacterDetail(ctx context.Context, id int) (*CharacterDetail, error) {
	character, err := e.src.GetCharacter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get character %d: %w", id, err)
	}

	detail := &CharacterDetail{
		Character:     character,
		Episodes:      []catalog.Episode{},
		TotalEpisodes: len(character.Episode),
		HasMore:       len(character.Episode) > e.episodePreviewLimit(),
	}

	episodes, err := e.episodes.ResolvePreview(ctx, character.Episode)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Int("character_id", id).
			Msg("Episode preview failed")
		detail.EpisodesErr = err
		return detail, nil
	}
	detail.Episodes = episodes

	return detail, nil
}

func (e *Explorer) episodePreviewLimit() int {
	if e.config.PreviewLimit <= 0 {
		return 5
	}
	return e.config.PreviewLimit
}

// CharacterEpisodes resolves every episode a character appears in. Episodes
// that fail to resolve are dropped.
func (e *Explorer) CharacterEpisodes(ctx context.Context, id int) (*catalog.Character, []catalog.Episode, error) {
	character, err := e.src.GetCharacter(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get character %d: %w", id, err)
	}
	return character, e.episodes.ResolveAll(ctx, character.Episode), nil
}

// LocationDetail is a location with its residents resolved.
type LocationDetail struct {
	Location  *catalog.Location
	Residents []catalog.Character
}

// LocationDetail fetches a location and resolves its residents. Residents
// that fail to resolve are dropped.
func (e *Explorer) LocationDetail(ctx context.Context, id int) (*LocationDetail, error) {
	location, err := e.src.GetLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get location %d: %w", id, err)
	}

	return &LocationDetail{
		Location:  location,
		Residents: e.characters.ResolveAll(ctx, location.Residents),
	}, nil
}

// EpisodeDetail is an episode with its characters resolved.
type EpisodeDetail struct {
	Episode    *catalog.Episode
	Characters []catalog.Character

	// Number is the parsed episode code. Valid only when HasNumber is true.
	Number    catalog.EpisodeNumber
	HasNumber bool
}

// EpisodeDetail fetches an episode and resolves its characters. Characters
// that fail to resolve are dropped.
func (e *Explorer) EpisodeDetail(ctx context.Context, id int) (*EpisodeDetail, error) {
	episode, err := e.src.GetEpisode(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, err)
	}

	number, ok := episode.SeasonEpisode()
	return &EpisodeDetail{
		Episode:    episode,
		Characters: e.characters.ResolveAll(ctx, episode.Characters),
		Number:     number,
		HasNumber:  ok,
	}, nil
}
