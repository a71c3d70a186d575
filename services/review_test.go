package services

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

func TestAddReviewRequiresActiveSubscription(t *testing.T) {
	f := newFixture(t)
	p := f.provider("Strict")
	outsider := f.student("Outsider")

	_, err := f.providers.AddReview(f.ctx, p.UserID, outsider.UserID, 5, "great")
	require.Error(t, err)
	assert.True(t, apperr.IsAuth(err))
	assert.Equal(t, 0, f.reload(p).TotalReviews)

	plan := f.mealPlan(p.UserID, 100, 7)
	sub := f.subscribe(outsider.UserID, p.UserID, plan.ID, "2030-01-01")
	require.NoError(t, f.db.Model(&models.Subscription{}).Where("id = ?", sub.ID).Update("status", models.SubscriptionPaused).Error)
	_, err = f.providers.AddReview(f.ctx, p.UserID, outsider.UserID, 5, "great")
	assert.True(t, apperr.IsAuth(err), "a paused subscription does not count")

	require.NoError(t, f.db.Model(&models.Subscription{}).Where("id = ?", sub.ID).Update("status", models.SubscriptionActive).Error)
	res, err := f.providers.AddReview(f.ctx, p.UserID, outsider.UserID, 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalReviews)
	assert.InDelta(t, 5.0, res.Rating, 1e-9)
}

func TestAddReviewRejectsSecondReview(t *testing.T) {
	f := newFixture(t)
	p, _, s := f.subscribed()

	_, err := f.providers.AddReview(f.ctx, p.UserID, s.UserID, 4, "")
	require.NoError(t, err)
	_, err = f.providers.AddReview(f.ctx, p.UserID, s.UserID, 1, "changed my mind")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	stored := f.reload(p)
	assert.Equal(t, 1, stored.TotalReviews)
	assert.InDelta(t, 4.0, stored.Rating, 1e-9)
}

func TestAddReviewValidatesInput(t *testing.T) {
	f := newFixture(t)
	p, _, s := f.subscribed()
	for _, r := range []int{0, 6, -1} {
		_, err := f.providers.AddReview(f.ctx, p.UserID, s.UserID, r, "")
		assert.True(t, apperr.Is(err, apperr.KindValidation), "rating %d", r)
	}
	_, err := f.providers.AddReview(f.ctx, 9999, s.UserID, 3, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRatingIsAverageOfReviews(t *testing.T) {
	f := newFixture(t)
	p := f.provider("Average")
	plan := f.mealPlan(p.UserID, 100, 7)
	rng := rand.New(rand.NewSource(7))

	var ratings []int
	for i := 0; i < 12; i++ {
		s := f.student("Reviewer")
		f.subscribe(s.UserID, p.UserID, plan.ID, "2030-01-01")
		r := rng.Intn(5) + 1
		ratings = append(ratings, r)

		res, err := f.providers.AddReview(f.ctx, p.UserID, s.UserID, r, "")
		require.NoError(t, err)
		assert.Equal(t, len(ratings), res.TotalReviews)
		assert.InDelta(t, models.AverageRating(ratings), res.Rating, 1e-9)
	}

	stored := f.reload(p)
	assert.Equal(t, len(ratings), stored.TotalReviews)
	assert.InDelta(t, models.AverageRating(ratings), stored.Rating, 1e-9)
}

func TestConcurrentReviewsAreBothCounted(t *testing.T) {
	f := newFixture(t)
	p := f.provider("Busy")
	plan := f.mealPlan(p.UserID, 100, 7)
	a := f.student("A")
	b := f.student("B")
	f.subscribe(a.UserID, p.UserID, plan.ID, "2030-01-01")
	f.subscribe(b.UserID, p.UserID, plan.ID, "2030-01-01")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, s := range []*models.Student{a, b} {
		wg.Add(1)
		go func(i int, id uint, rating int) {
			defer wg.Done()
			_, errs[i] = f.providers.AddReview(f.ctx, p.UserID, id, rating, "")
		}(i, s.UserID, 2+2*i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stored := f.reload(p)
	assert.Equal(t, 2, stored.TotalReviews)
	assert.InDelta(t, 3.0, stored.Rating, 1e-9)
}

func TestAddReviewLocksProviderRow(t *testing.T) {
	f := newFixture(t)
	p, _, s := f.subscribed()

	var locks []string
	err := f.db.Callback().Query().After("gorm:query").Register("test:locks", func(db *gorm.DB) {
		if c, ok := db.Statement.Clauses["FOR"]; ok {
			if l, ok := c.Expression.(clause.Locking); ok {
				locks = append(locks, db.Statement.Table+" "+l.Strength)
			}
		}
	})
	require.NoError(t, err)

	_, err = f.providers.AddReview(f.ctx, p.UserID, s.UserID, 4, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"providers UPDATE"}, locks)
}

func TestAddMenuItemReview(t *testing.T) {
	f := newFixture(t)
	p, _, s := f.subscribed()
	item := f.menuItems(p.UserID, 1)[0]

	updated, err := f.providers.AddMenuItemReview(f.ctx, item.ID, s.UserID, 3, "ok")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalReviews)
	assert.InDelta(t, 3.0, updated.Rating, 1e-9)

	_, err = f.providers.AddMenuItemReview(f.ctx, item.ID, s.UserID, 5, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	other := f.student("Other")
	_, err = f.providers.AddMenuItemReview(f.ctx, item.ID, other.UserID, 5, "")
	assert.True(t, apperr.IsAuth(err))

	_, err = f.providers.AddMenuItemReview(f.ctx, 9999, s.UserID, 5, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var stored models.MenuItem
	require.NoError(t, f.db.First(&stored, item.ID).Error)
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, s.UserID, stored.Reviews[0].StudentID)
}
