package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-mess-api/cache"
	"student-mess-api/models"
	"student-mess-api/testutil"
)

type fixture struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	cache     *cache.Memory
	providers *ProviderService
	subs      *SubscriptionService
	orders    *OrderService
	accounts  *AccountService
	seq       int
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	store := cache.NewMemory()
	providers := NewProviderService(db, store, time.Minute, zap.NewNop())
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		cache:     store,
		providers: providers,
		subs:      NewSubscriptionService(db, zap.NewNop()),
		orders:    NewOrderService(db, zap.NewNop()),
		accounts:  NewAccountService(db, providers),
	}
}

func (f *fixture) user(role models.UserRole, name string) models.User {
	f.seq++
	u := models.User{
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.com", f.seq),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

// provider creates a provider with only the registration fields filled.
func (f *fixture) provider(business string) *models.Provider {
	u := f.user(models.RoleProvider, "Owner of "+business)
	p := models.Provider{
		UserID:        u.ID,
		BusinessName:  business,
		Description:   "Home cooked meals",
		Type:          models.ProviderIndividual,
		Cuisine:       models.StringList{},
		DeliveryAreas: models.StringList{},
		IsActive:      true,
	}
	require.NoError(f.t, f.db.Omit(clause.Associations).Create(&p).Error)
	p.User = u
	return &p
}

func (f *fixture) student(name string) *models.Student {
	u := f.user(models.RoleStudent, name)
	s := models.Student{UserID: u.ID, University: "NIT", Department: "CSE", RollNumber: fmt.Sprintf("R%03d", f.seq)}
	require.NoError(f.t, f.db.Omit(clause.Associations).Create(&s).Error)
	s.User = u
	return &s
}

func price(v float64) *float64 { return &v }
func days(v int) *int          { return &v }
func str(v string) *string     { return &v }

func (f *fixture) menuItems(providerID uint, n int) []models.MenuItem {
	items := make([]models.MenuItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := f.providers.CreateMenuItem(f.ctx, providerID, MenuItemInput{
			Name:        fmt.Sprintf("Dish %d", i+1),
			Description: "Tasty",
			Category:    models.CategoryLunch,
			Price:       price(float64(50 + 10*i)),
		})
		require.NoError(f.t, err)
		items = append(items, *item)
	}
	return items
}

func (f *fixture) mealPlan(providerID uint, cost float64, duration int) *models.MealPlan {
	plan, err := f.providers.CreateMealPlan(f.ctx, providerID, MealPlanInput{
		Name:        "Monthly thali",
		Description: "Lunch and dinner",
		Price:       price(cost),
		Duration:    days(duration),
	})
	require.NoError(f.t, err)
	return plan
}

func (f *fixture) subscribe(studentID, providerID, planID uint, start string) *models.Subscription {
	sub, err := f.subs.Subscribe(f.ctx, studentID, SubscribeInput{
		ProviderID:      providerID,
		MealPlanID:      planID,
		StartDate:       start,
		DeliveryAddress: "Hostel 4, Room 12",
		PaymentMethod:   models.PaymentUPI,
	})
	require.NoError(f.t, err)
	return sub
}

// subscribed returns a provider, a plan and a student actively subscribed to it.
func (f *fixture) subscribed() (*models.Provider, *models.MealPlan, *models.Student) {
	p := f.provider(fmt.Sprintf("Kitchen %d", f.seq+1))
	plan := f.mealPlan(p.UserID, 3000, 30)
	s := f.student("Student")
	f.subscribe(s.UserID, p.UserID, plan.ID, time.Now().Format(time.DateOnly))
	return p, plan, s
}

func (f *fixture) reload(p *models.Provider) *models.Provider {
	var out models.Provider
	require.NoError(f.t, f.db.Preload("User").First(&out, "user_id = ?", p.UserID).Error)
	return &out
}
