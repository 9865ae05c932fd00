// Package view держит состояние экранов CLI: коллекцию отзывов, критерии,
// флаг загрузки и ошибку. Сам отбор делает reviewquery.
package view

import (
	"context"
	"errors"
	"sync"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/reviewquery"
)

// ErrSuperseded - ответ устарел: после него был выдан более новый запрос
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Fetcher загружает коллекцию отзывов из Review Source
type Fetcher func(ctx context.Context) ([]reviewquery.Review, error)

// Snapshot - то, что показывается пользователю в данный момент
type Snapshot struct {
	Loading  bool
	Err      string
	Criteria reviewquery.Criteria
	Total    int
	Reviews  []reviewquery.Review
}

// ReviewList - экран списка отзывов ("My Reviews" или "All Reviews").
// Побеждает последний выданный запрос: ответы на более ранние отбрасываются.
type ReviewList struct {
	mu    sync.Mutex
	fetch Fetcher

	reviews  []reviewquery.Review
	version  uint64
	criteria reviewquery.Criteria

	issued  uint64
	loading bool
	errMsg  string

	memo         []reviewquery.Review
	memoVersion  uint64
	memoCriteria reviewquery.Criteria
	memoValid    bool
	computations int
}

func NewReviewList(fetch Fetcher) *ReviewList {
	return &ReviewList{
		fetch:    fetch,
		reviews:  []reviewquery.Review{},
		criteria: reviewquery.DefaultCriteria(),
	}
}

// Refresh загружает коллекцию заново. При ошибке предыдущая коллекция
// сохраняется, а сообщение об ошибке показывается до DismissError.
func (v *ReviewList) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.loading = true
	v.mu.Unlock()

	reviews, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.issued {
		logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", v.issued).
			Msg("Discarding stale fetch result")
		return ErrSuperseded
	}

	v.loading = false
	if err != nil {
		v.errMsg = err.Error()
		return err
	}

	if reviews == nil {
		reviews = []reviewquery.Review{}
	}
	v.reviews = reviews
	v.version++
	v.errMsg = ""
	return nil
}

// SetCriteria заменяет критерии целиком
func (v *ReviewList) SetCriteria(c reviewquery.Criteria) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria = c
}

func (v *ReviewList) Criteria() reviewquery.Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria
}

func (v *ReviewList) DismissError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errMsg = ""
}

// Collection возвращает загруженную коллекцию без фильтрации
func (v *ReviewList) Collection() []reviewquery.Review {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reviews
}

// Snapshot возвращает текущее состояние экрана. Пока идет загрузка,
// отбор не выполняется.
func (v *ReviewList) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Loading:  v.loading,
		Err:      v.errMsg,
		Criteria: v.criteria,
		Total:    len(v.reviews),
	}
	if v.loading {
		return snap
	}

	snap.Reviews = v.visible()
	return snap
}

// visible пересчитывает результат только при смене коллекции или критериев
func (v *ReviewList) visible() []reviewquery.Review {
	if v.memoValid && v.memoVersion == v.version && v.memoCriteria.Equal(v.criteria) {
		return v.memo
	}

	v.memo = reviewquery.ApplyQuery(v.reviews, v.criteria)
	v.memoVersion = v.version
	v.memoCriteria = v.criteria
	v.memoValid = true
	v.computations++
	return v.memo
}
