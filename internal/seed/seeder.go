package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"communityhub/internal/logger"
	"communityhub/internal/models"
	"communityhub/internal/services"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword 种子用户的登录密码
const DefaultPassword = "password123"

// 种子数据围绕这几个城市分布
var cities = []struct {
	Name     string
	State    string
	Country  string
	Lat, Lng float64
}{
	{"Pune", "Maharashtra", "India", 18.5204, 73.8567},
	{"Mumbai", "Maharashtra", "India", 19.0760, 72.8777},
	{"Bengaluru", "Karnataka", "India", 12.9716, 77.5946},
}

var itemTypes = []models.ItemType{models.ItemTypeEvent, models.ItemTypeIssue, models.ItemTypeNotice, models.ItemTypeReport}
var severities = []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}
var issueCategories = []string{"roads", "water", "electricity", "sanitation", "safety"}

// Seeder 开发环境的演示数据
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev 写入用户、条目、互动和关注关系
func (s *Seeder) SeedDev(userCount, itemCount int) error {
	logger.Log.Info("Creating users...", zap.Int("count", userCount))
	users, err := s.seedUsers(userCount)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating items...", zap.Int("count", itemCount))
	items, err := s.seedItems(users, itemCount)
	if err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}

	logger.Log.Info("Creating engagement...")
	if err := s.seedEngagement(users, items); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("items", len(items)),
	)
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := services.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	seen := make(map[string]bool)
	for len(users) < count {
		email := strings.ToLower(gofakeit.Email())
		if seen[email] {
			continue
		}
		seen[email] = true

		city := cities[rand.Intn(len(cities))]
		user := models.User{
			Name:            gofakeit.Name(),
			Email:           email,
			PasswordHash:    hash,
			City:            city.Name,
			IDProofVerified: rand.Intn(3) > 0,
			Profile: &models.UserProfile{
				Bio: gofakeit.HipsterSentence(),
			},
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedItems(users []models.User, count int) ([]*models.Item, error) {
	items := make([]*models.Item, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		city := cities[rand.Intn(len(cities))]
		itemType := itemTypes[rand.Intn(len(itemTypes))]

		// 城市中心附近约 5 公里内随机分布
		lat := city.Lat + (rand.Float64()-0.5)*0.09
		lng := city.Lng + (rand.Float64()-0.5)*0.09

		fields := map[string]string{
			"date":        time.Now().AddDate(0, 0, rand.Intn(30)).Format("2006-01-02"),
			"category":    issueCategories[rand.Intn(len(issueCategories))],
			"contact":     gofakeit.Email(),
			"priority":    string(severities[rand.Intn(len(severities))]),
			"link":        "https://example.org/" + gofakeit.Word(),
			"valid_until": time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		}

		item, err := services.PrepareItem(services.CreateItemInput{
			UserID:      owner.ID,
			Type:        string(itemType),
			Title:       strings.TrimSuffix(gofakeit.HipsterSentence(), "."),
			Description: gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
			Latitude:    fmt.Sprintf("%.6f", lat),
			Longitude:   fmt.Sprintf("%.6f", lng),
			City:        city.Name,
			State:       city.State,
			Country:     city.Country,
			Severity:    string(severities[rand.Intn(len(severities))]),
			Field:       func(name string) string { return fields[name] },
		})
		if err != nil {
			return nil, err
		}
		if err := services.CreateItem(item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Seeder) seedEngagement(users []models.User, items []*models.Item) error {
	for _, item := range items {
		for _, u := range users {
			switch rand.Intn(6) {
			case 0:
				if _, err := services.React(u.ID, item.ID, models.ReactionLike); err != nil {
					return err
				}
			case 1:
				if _, _, err := services.AddComment(u.ID, item.ID, gofakeit.HipsterSentence(), nil); err != nil {
					return err
				}
			case 2:
				if _, _, err := services.ToggleShare(u.ID, item.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || rand.Intn(4) != 0 {
				continue
			}
			if _, err := services.ToggleFollow(follower.ID, target.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
