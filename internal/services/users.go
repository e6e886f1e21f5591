package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/db"
	"communityhub/internal/models"
	"communityhub/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MinPasswordLen = 6

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Authenticate 邮箱密码登录
func Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	return &user, nil
}

// FindUserByEmail 不存在时返回 nil
func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(id uint) (*models.User, error) {
	var user models.User
	err := db.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateUserByEmail 验证码登录，首次登录自动注册
func FindOrCreateUserByEmail(email string) (*models.User, error) {
	user := models.User{Email: email, Name: utils.NameFromEmail(email)}
	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateGoogleUser 先按 Google ID，再按邮箱查找；都没有则注册
func FindOrCreateGoogleUser(googleID, email, name string) (*models.User, error) {
	var user models.User
	err := db.DB.Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.GoogleID == "" {
			if err := db.DB.Model(&user).Update("google_id", googleID).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = utils.NameFromEmail(email)
	}
	user = models.User{Name: name, Email: email, GoogleID: googleID}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}
	return &user, nil
}

// ResetPassword 更新密码哈希
func ResetPassword(email, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.DB.Model(&models.User{}).Where("email = ?", email).Update("password_hash", hash).Error
}

// UserStats 个人统计
type UserStats struct {
	TotalItems     int64 `json:"total_items"`
	ResolvedItems  int64 `json:"resolved_items"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	Reputation     int   `json:"reputation"`
}

func GetUserStats(user *models.User) (*UserStats, error) {
	stats := &UserStats{Reputation: user.ReputationScore}
	base := db.DB.Model(&models.Item{}).Where("user_id = ? AND lifecycle <> ?", user.ID, models.LifecycleDeleted)
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.StatusResolved).Count(&stats.ResolvedItems).Error; err != nil {
		return nil, err
	}
	var err error
	if stats.FollowersCount, err = FollowersCount(db.DB, user.ID); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = FollowingCount(db.DB, user.ID); err != nil {
		return nil, err
	}
	return stats, nil
}

// ProfileUser 个人主页上的用户信息，邮箱和电话只对本人可见
type ProfileUser struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	City            string    `json:"city"`
	IDProofVerified bool      `json:"id_proof_verified"`
	ReputationScore int       `json:"reputation_score"`
	MemberDays      int       `json:"member_days"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProfileView 个人主页
type ProfileView struct {
	User        ProfileUser        `json:"user"`
	Profile     models.UserProfile `json:"profile"`
	Stats       *UserStats         `json:"stats"`
	IsFollowing bool               `json:"is_following"`
	IsSelf      bool               `json:"is_self"`
}

func GetProfile(viewerID, userID uint) (*ProfileView, error) {
	var user models.User
	err := db.DB.Preload("Profile").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, err
	}

	stats, err := GetUserStats(&user)
	if err != nil {
		return nil, err
	}
	following, err := IsFollowing(viewerID, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User: ProfileUser{
			ID:              user.ID,
			Name:            user.Name,
			City:            user.City,
			IDProofVerified: user.IDProofVerified,
			ReputationScore: user.ReputationScore,
			MemberDays:      utils.GetDaysSinceJoined(user.CreatedAt),
			CreatedAt:       user.CreatedAt,
		},
		Stats:       stats,
		IsFollowing: following,
		IsSelf:      viewerID == userID,
	}
	if view.IsSelf {
		view.User.Email = user.Email
		view.User.Phone = user.Phone
	}
	if user.Profile != nil {
		view.Profile = *user.Profile
	} else {
		view.Profile.UserID = user.ID
	}
	return view, nil
}

// UpdateProfileInput 可修改的资料
type UpdateProfileInput struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Contact      string `json:"contact" form:"contact"`
	Bio          string `json:"bio" form:"bio"`
	ProfileImage string `json:"profile_image" form:"profile_image"`
	BannerImage  string `json:"banner_image" form:"banner_image"`
	// City 为 nil 时保留原城市
	City *string `json:"city" form:"city"`
}

const (
	maxNameLen = 100
	maxBioLen  = 500
	maxURLLen  = 500
)

// UpdateProfile 同一事务更新用户表并写入/更新扩展资料
func UpdateProfile(userID uint, in UpdateProfileInput) (*models.User, error) {
	name := utils.SanitizeText(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "Name is required")
	}
	if len(name) > maxNameLen {
		return nil, apperr.Validation("name", "Name is too long")
	}
	email := utils.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.Validation("email", "Invalid email")
	}
	bio := utils.SanitizeText(in.Bio)
	if len(bio) > maxBioLen {
		return nil, apperr.Validation("bio", "Bio is too long")
	}
	profileImage := strings.TrimSpace(in.ProfileImage)
	bannerImage := strings.TrimSpace(in.BannerImage)
	if len(profileImage) > maxURLLen || len(bannerImage) > maxURLLen {
		return nil, apperr.Validation("", "Image path is too long")
	}

	var user models.User
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperr.Conflict("Email is already in use")
		}

		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("User")
			}
			return err
		}

		fields := map[string]interface{}{
			"name":  name,
			"email": email,
			"phone": utils.SanitizeText(in.Contact),
		}
		if in.City != nil {
			fields["city"] = utils.SanitizeText(*in.City)
		}
		err := tx.Model(&user).Updates(fields).Error
		if err != nil {
			return err
		}

		profile := models.UserProfile{
			UserID:       userID,
			Bio:          bio,
			ProfileImage: profileImage,
			BannerImage:  bannerImage,
			UpdatedAt:    time.Now(),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio", "profile_image", "banner_image", "updated_at"}),
		}).Create(&profile).Error
		if err != nil {
			return err
		}

		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
