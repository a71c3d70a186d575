// Package seed fills a database with demo providers, students and activity.
package seed

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"student-mess-api/auth"
	"student-mess-api/models"
	"student-mess-api/services"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

type Options struct {
	Providers        int
	Students         int
	ItemsPerProvider int
	Seed             int64
	Output           io.Writer // progress output, nil for none
}

// Result counts what was created.
type Result struct {
	Providers     int
	Students      int
	MenuItems     int
	MealPlans     int
	Subscriptions int
	Reviews       int
	Orders        int
}

// Services is the subset of the application the seeder drives.
type Services struct {
	Auth      *auth.Service
	Providers *services.ProviderService
	Subs      *services.SubscriptionService
	Orders    *services.OrderService
}

type seeder struct {
	svc  Services
	fake faker.Faker
	log  *zap.Logger
	bar  *progressbar.ProgressBar
	res  Result
}

var (
	cuisines   = []string{"North Indian", "South Indian", "Bengali", "Gujarati", "Chinese", "Continental"}
	areas      = []string{"North Campus", "South Campus", "Hostel Block A", "Hostel Block B", "Old Town"}
	dishes     = []string{"Dal Tadka", "Paneer Butter Masala", "Veg Biryani", "Masala Dosa", "Chole Bhature", "Rajma Chawal", "Idli Sambar", "Aloo Paratha", "Fish Curry", "Egg Curry"}
	categories = []models.MenuCategory{models.CategoryBreakfast, models.CategoryLunch, models.CategoryDinner, models.CategorySnack}
	payments   = []models.PaymentMethod{models.PaymentCash, models.PaymentCard, models.PaymentUPI, models.PaymentWallet}
)

// Run creates the demo data through the service layer so every business rule applies.
func Run(ctx context.Context, svc Services, opts Options, log *zap.Logger) (*Result, error) {
	if opts.Providers < 1 || opts.Students < 0 {
		return nil, fmt.Errorf("seed: need at least one provider")
	}
	if opts.ItemsPerProvider < services.MinMenuItemsForVerification {
		opts.ItemsPerProvider = services.MinMenuItemsForVerification
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	s := &seeder{
		svc:  svc,
		fake: faker.NewWithSeed(rand.NewSource(opts.Seed)),
		log:  log,
		bar: progressbar.NewOptions(opts.Providers+opts.Students,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("seeding"),
			progressbar.OptionShowCount(),
		),
	}

	providers := make([]*models.Provider, 0, opts.Providers)
	plans := make(map[uint][]models.MealPlan)
	items := make(map[uint][]models.MenuItem)
	for i := 0; i < opts.Providers; i++ {
		p, pl, it, err := s.provider(ctx, i, opts.ItemsPerProvider)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
		plans[p.UserID] = pl
		items[p.UserID] = it
		_ = s.bar.Add(1)
	}

	for i := 0; i < opts.Students; i++ {
		p := providers[s.fake.IntBetween(0, len(providers)-1)]
		if err := s.student(ctx, i, p, plans[p.UserID], items[p.UserID]); err != nil {
			return nil, err
		}
		_ = s.bar.Add(1)
	}
	_ = s.bar.Finish()

	log.Info("seed complete",
		zap.Int("providers", s.res.Providers),
		zap.Int("students", s.res.Students),
		zap.Int("orders", s.res.Orders))
	return &s.res, nil
}

func (s *seeder) provider(ctx context.Context, i, nItems int) (*models.Provider, []models.MealPlan, []models.MenuItem, error) {
	business := fmt.Sprintf("%s Mess %d", s.fake.Person().LastName(), i+1)
	session, err := s.svc.Auth.Register(ctx, auth.RegisterInput{
		Name:         s.fake.Person().Name(),
		Email:        fmt.Sprintf("provider%d@mess.example", i+1),
		Password:     DemoPassword,
		Role:         models.RoleProvider,
		BusinessName: business,
		Description:  s.fake.Lorem().Sentence(12),
		Type:         models.ProviderIndividual,
		Cuisine:      models.StringList{s.fake.RandomStringElement(cuisines), s.fake.RandomStringElement(cuisines)},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("seed provider %d: %w", i, err)
	}
	id := session.Account.Base().ID

	var items []models.MenuItem
	for j := 0; j < nItems; j++ {
		price := float64(s.fake.IntBetween(40, 180))
		item, err := s.svc.Providers.CreateMenuItem(ctx, id, services.MenuItemInput{
			Name:        s.fake.RandomStringElement(dishes),
			Description: s.fake.Lorem().Sentence(8),
			Category:    categories[s.fake.IntBetween(0, len(categories)-1)],
			Price:       &price,
			Ingredients: models.StringList(s.fake.Lorem().Words(4)),
		})
		if err != nil {
			return nil, nil, nil, err
		}
		items = append(items, *item)
	}
	s.res.MenuItems += len(items)

	var plans []models.MealPlan
	for _, d := range []int{7, 30} {
		price := float64(d * s.fake.IntBetween(80, 150))
		duration := d
		plan, err := s.svc.Providers.CreateMealPlan(ctx, id, services.MealPlanInput{
			Name:        fmt.Sprintf("%d day plan", d),
			Description: "Lunch and dinner delivered daily",
			Price:       &price,
			Duration:    &duration,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		plans = append(plans, *plan)
	}
	s.res.MealPlans += len(plans)

	phone := s.fake.Phone().Number()
	address := s.fake.Address().Address()
	deliveryAreas := models.StringList{s.fake.RandomStringElement(areas)}
	p, err := s.svc.Providers.UpdateProfile(ctx, id, services.ProfileUpdate{
		Phone:         &phone,
		Address:       &address,
		DeliveryAreas: &deliveryAreas,
		BankDetails: models.Flex[models.BankDetails]{Set: true, Value: models.BankDetails{
			AccountName:   business,
			AccountNumber: s.fake.Numerify("##########"),
			BankName:      "Campus Bank",
		}},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if s.fake.Bool() {
		if p, err = s.svc.Providers.VerifyProvider(ctx, id); err != nil {
			return nil, nil, nil, err
		}
	}
	s.res.Providers++
	return p, plans, items, nil
}

func (s *seeder) student(ctx context.Context, i int, p *models.Provider, plans []models.MealPlan, items []models.MenuItem) error {
	session, err := s.svc.Auth.Register(ctx, auth.RegisterInput{
		Name:       s.fake.Person().Name(),
		Email:      fmt.Sprintf("student%d@uni.example", i+1),
		Password:   DemoPassword,
		Role:       models.RoleStudent,
		University: "State University",
		Department: s.fake.RandomStringElement([]string{"CSE", "ECE", "Mechanical", "Civil", "Physics"}),
		RollNumber: s.fake.Numerify("2024####"),
	})
	if err != nil {
		return fmt.Errorf("seed student %d: %w", i, err)
	}
	id := session.Account.Base().ID
	s.res.Students++

	plan := plans[s.fake.IntBetween(0, len(plans)-1)]
	method := payments[s.fake.IntBetween(0, len(payments)-1)]
	sub, err := s.svc.Subs.Subscribe(ctx, id, services.SubscribeInput{
		ProviderID:      p.UserID,
		MealPlanID:      plan.ID,
		StartDate:       time.Now().AddDate(0, 0, -s.fake.IntBetween(0, 5)).Format(time.DateOnly),
		DeliveryAddress: s.fake.Address().StreetAddress(),
		PaymentMethod:   method,
	})
	if err != nil {
		return err
	}
	s.res.Subscriptions++

	if _, err := s.svc.Providers.AddReview(ctx, p.UserID, id, s.fake.IntBetween(3, 5), s.fake.Lorem().Sentence(6)); err != nil {
		return err
	}
	s.res.Reviews++

	item := items[s.fake.IntBetween(0, len(items)-1)]
	_, err = s.svc.Orders.PlaceOrder(ctx, id, services.PlaceOrderInput{
		ProviderID:      p.UserID,
		Items:           []services.OrderItemInput{{MenuItemID: item.ID, Quantity: s.fake.IntBetween(1, 3)}},
		OrderType:       models.OrderLunch,
		SubscriptionID:  &sub.ID,
		DeliveryAddress: sub.DeliveryAddress,
	})
	if err != nil {
		return err
	}
	s.res.Orders++
	return nil
}
