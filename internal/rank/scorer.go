package rank

import "leadgen-engine/internal/domain"

type Scorer interface {
	Score(lead domain.Lead) int
}
