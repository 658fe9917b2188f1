package services

import (
	"context"
	"errors"
	"testing"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
)

func TestPromoCreate_NormalizesAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromoService(db, nil)

	p, err := svc.Create(context.Background(), "  summer25 ", 5, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Code != "SUMMER25" {
		t.Fatalf("code not normalized: %q", p.Code)
	}

	if _, err := svc.Create(context.Background(), "SUMMER25", 10, nil); !errors.Is(err, ErrPromoExists) {
		t.Fatalf("got %v, want ErrPromoExists", err)
	}

	codes, err := svc.List(context.Background())
	if err != nil || len(codes) != 1 {
		t.Fatalf("list: %+v, %v", codes, err)
	}
}

func TestPromoRedeem_CreditsOncePerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromoService(db, &fakeNotifier{})

	if err := db.Create(&domain.User{ID: 7}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "GIFT", 3, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Lookup is case-insensitive thanks to normalization.
	stars, err := svc.Redeem(context.Background(), 7, "gift")
	if err != nil || stars != 3 {
		t.Fatalf("redeem: %v, %v", stars, err)
	}
	u, _ := repo.GetUser(context.Background(), db, 7)
	if u.Stars != 3 {
		t.Fatalf("stars %v, want 3", u.Stars)
	}

	if _, err := svc.Redeem(context.Background(), 7, "GIFT"); !errors.Is(err, ErrPromoAlreadyUsed) {
		t.Fatalf("got %v, want ErrPromoAlreadyUsed", err)
	}
	if _, err := svc.Redeem(context.Background(), 7, "NOPE"); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("got %v, want ErrPromoNotFound", err)
	}
	if _, err := svc.Redeem(context.Background(), 99, "GIFT"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestPromoRedeem_UseLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromoService(db, nil)

	for id := int64(1); id <= 2; id++ {
		if err := db.Create(&domain.User{ID: id}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	one := 1
	if _, err := svc.Create(context.Background(), "RARE", 2, &one); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Redeem(context.Background(), 1, "RARE"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), 2, "RARE"); !errors.Is(err, ErrPromoExhausted) {
		t.Fatalf("got %v, want ErrPromoExhausted", err)
	}
}
