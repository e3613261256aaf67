package services

import (
	"context"
	"sort"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
)

type WalkerMatcher interface {
	ListAll(ctx context.Context) ([]models.Walker, error)
}

type MatchmakingService struct {
	walkerRepo WalkerMatcher
}

func NewMatchmakingService(walkerRepo WalkerMatcher) *MatchmakingService {
	return &MatchmakingService{walkerRepo: walkerRepo}
}

func (s *MatchmakingService) GetMatchedWalkers(
	ctx context.Context,
	dog *models.Dog,
	ownerArea string,
	limit int,
) ([]models.WalkerWithScore, error) {
	walkers, err := s.walkerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.WalkerWithScore, 0, len(walkers))
	for _, walker := range walkers {
		matched = append(matched, models.WalkerWithScore{
			Walker:     walker,
			MatchScore: calculateMatchScore(dog, ownerArea, &walker),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func calculateMatchScore(dog *models.Dog, ownerArea string, walker *models.Walker) int {
	score := 0
	specialties := normalizeValues(walker.Specialties)

	for _, aliases := range dogNeedAliases(dog) {
		for _, alias := range aliases {
			if _, ok := specialties[alias]; ok {
				score += 40
				break
			}
		}
	}

	if walker.Rating > 4.5 {
		score += 20
	}
	if walker.ExperienceYears > 3 {
		score += 15
	}
	if walker.IsVerified {
		score += 10
	}
	if area := normalize(ownerArea); area != "" {
		location := normalize(walker.Location)
		if location != "" && (strings.Contains(area, location) || strings.Contains(location, area)) {
			score += 15
		}
	}

	return score
}

func dogNeedAliases(dog *models.Dog) map[string][]string {
	mapped := make(map[string][]string)
	if dog == nil {
		return mapped
	}

	switch normalize(dog.Size) {
	case "grande":
		mapped["grande"] = []string{"perros_grandes", "grandes", "large_dogs"}
	case "pequeño", "pequeno":
		mapped["pequeño"] = []string{"perros_pequeños", "perros_pequenos", "pequeños", "small_dogs"}
	}

	for _, need := range dog.SpecialNeeds {
		switch key := normalize(need); key {
		case "cachorro", "cachorros", "puppy":
			mapped["cachorros"] = []string{"cachorros", "puppies"}
		case "senior", "mayor", "anciano":
			mapped["senior"] = []string{"perros_senior", "senior", "cuidados_especiales"}
		case "medicación", "medicacion", "medication":
			mapped["medicacion"] = []string{"medicación", "medicacion", "cuidados_especiales"}
		case "reactivo", "nervioso", "ansiedad":
			mapped["conducta"] = []string{"adiestramiento", "perros_reactivos", "comportamiento"}
		default:
			if key != "" {
				mapped[key] = []string{key}
			}
		}
	}

	return mapped
}

func normalizeValues(values []string) map[string]struct{} {
	normalized := make(map[string]struct{})
	for _, value := range values {
		if key := normalize(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func normalize(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}
