package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activityrepo "rekod.my/famvault/internal/modules/activity/repository"
	activitysvc "rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/internal/modules/user/dto"
	"rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/apperror"
)

const testSecret = "test-secret"

func setupAuthService(t *testing.T) (AuthService, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.ActivityLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	activity := activitysvc.NewActivityService(activityrepo.NewActivityRepository(db))
	svc := NewAuthService(repository.NewUserRepository(db), nil, activity, testSecret, time.Hour)
	return svc, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterInput{
		Name:     "Aminah",
		Email:    "aminah@example.com",
		Password: "secret-password",
	}, nil, "127.0.0.1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ApprovedAt != nil {
		t.Error("fresh registration must start unapproved")
	}
	if user.IsAdmin {
		t.Error("fresh registration must not be admin")
	}

	// The password hash never leaks through the response and is not the
	// plain password in the row.
	var row entity.User
	if err := db.First(&row, "email = ?", "aminah@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if row.PasswordHash == "secret-password" {
		t.Fatal("password stored in plain text")
	}

	// Login with the right password yields a token carrying the user ID.
	auth, err := svc.Login(ctx, dto.LoginInput{
		Email:    "aminah@example.com",
		Password: "secret-password",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(auth.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %s, want %s", claims.Subject, user.ID)
	}

	// Wrong password and unknown email both come back as the same 401.
	_, err = svc.Login(ctx, dto.LoginInput{Email: "aminah@example.com", Password: "wrong"}, "127.0.0.1")
	if apperror.MapErrorToStatus(err) != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", apperror.MapErrorToStatus(err))
	}
	_, err = svc.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "whatever"}, "127.0.0.1")
	if apperror.MapErrorToStatus(err) != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", apperror.MapErrorToStatus(err))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	input := dto.RegisterInput{Name: "Aminah", Email: "aminah@example.com", Password: "secret-password"}
	if _, err := svc.Register(ctx, input, nil, "127.0.0.1"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, input, nil, "127.0.0.1")
	if err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
	if apperror.MapErrorToStatus(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", apperror.MapErrorToStatus(err))
	}
}

func TestRegistrationLeavesAuditTrail(t *testing.T) {
	svc, db := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterInput{
		Name:     "Aminah",
		Email:    "aminah@example.com",
		Password: "secret-password",
	}, nil, "10.0.0.9"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var logs []entity.ActivityLog
	if err := db.Where("action = ?", "user.registered").Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(logs))
	}
	if logs[0].IP != "10.0.0.9" {
		t.Errorf("audit IP = %s, want 10.0.0.9", logs[0].IP)
	}
}
