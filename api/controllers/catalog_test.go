package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/internal/users"
	pkgAuth "github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox"
)

type stubCatalogService struct {
	catalog.Service
	listByCategory func(string) ([]catalog.ItemDTO, error)
	get            func(uuid.UUID) (*catalog.ItemDTO, error)
	create         func(pkgAuth.AuthenticatedContext, catalog.CreateItemInput) (*catalog.ItemDTO, error)
	update         func(uuid.UUID, catalog.UpdateItemInput) (*catalog.ItemDTO, error)
	addReview      func(pkgAuth.AuthenticatedContext, uuid.UUID, catalog.ReviewInput) (*catalog.ItemDTO, error)
}

func (s stubCatalogService) ListByCategory(_ context.Context, category string) ([]catalog.ItemDTO, error) {
	return s.listByCategory(category)
}

func (s stubCatalogService) Get(_ context.Context, id uuid.UUID) (*catalog.ItemDTO, error) {
	return s.get(id)
}

func (s stubCatalogService) Create(_ context.Context, actor pkgAuth.AuthenticatedContext, input catalog.CreateItemInput) (*catalog.ItemDTO, error) {
	return s.create(actor, input)
}

func (s stubCatalogService) Update(_ context.Context, _ pkgAuth.AuthenticatedContext, id uuid.UUID, input catalog.UpdateItemInput) (*catalog.ItemDTO, error) {
	return s.update(id, input)
}

func (s stubCatalogService) AddReview(_ context.Context, actor pkgAuth.AuthenticatedContext, id uuid.UUID, input catalog.ReviewInput) (*catalog.ItemDTO, error) {
	return s.addReview(actor, id, input)
}

func TestCatalogGetRejectsMalformedID(t *testing.T) {
	svc := stubCatalogService{get: func(uuid.UUID) (*catalog.ItemDTO, error) {
		t.Fatalf("service should not be called")
		return nil, nil
	}}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/items/nope", nil), map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	CatalogGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCatalogGetNotFound(t *testing.T) {
	svc := stubCatalogService{get: func(uuid.UUID) (*catalog.ItemDTO, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
	}}
	id := uuid.NewString()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	CatalogGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCatalogByCategoryTrimsParam(t *testing.T) {
	var seen string
	svc := stubCatalogService{listByCategory: func(category string) ([]catalog.ItemDTO, error) {
		seen = category
		return []catalog.ItemDTO{{Name: "Ninja 650"}}, nil
	}}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/items/category/Sport", nil), map[string]string{"category": "  Sport "})
	rec := httptest.NewRecorder()
	CatalogByCategory(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seen != "Sport" {
		t.Fatalf("expected trimmed category, got %q", seen)
	}
	var items []catalog.ItemDTO
	decodeData(t, rec, &items)
	if len(items) != 1 || items[0].Name != "Ninja 650" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestCatalogCreateMapsPayload(t *testing.T) {
	var got catalog.CreateItemInput
	var gotActor pkgAuth.AuthenticatedContext
	svc := stubCatalogService{create: func(actor pkgAuth.AuthenticatedContext, input catalog.CreateItemInput) (*catalog.ItemDTO, error) {
		gotActor = actor
		got = input
		return &catalog.ItemDTO{ID: uuid.New(), Name: input.Name}, nil
	}}

	body := []byte(`{
		"name": "Tenere 700",
		"brand": "Yamaha",
		"category": "adventure",
		"price": "10499.99",
		"stock": 4,
		"is_featured": true,
		"image_url": "https://img.example.com/t7.jpg",
		"description": "Rally-bred twin",
		"specifications": {"engine": "689cc", "power": "72hp", "torque": "68Nm", "transmission": "6-speed", "weight": "205kg", "fuel_capacity": "16L"}
	}`)
	req, actor := withActor(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body)), enums.AccountRoleAdmin)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if gotActor != actor {
		t.Fatalf("expected caller to be forwarded")
	}
	if got.Category != enums.ItemCategoryAdventure {
		t.Fatalf("expected normalized category, got %q", got.Category)
	}
	if got.Price == nil || !got.Price.Equal(decimal.RequireFromString("10499.99")) || got.Stock == nil || *got.Stock != 4 || !got.IsFeatured {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.Specifications.FuelCapacity != "16L" {
		t.Fatalf("expected specifications to be mapped")
	}
}

func TestCatalogCreateRequiresPriceAndStock(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:catalog_ctrl_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := catalog.NewService(catalog.ServiceParams{
		Repo:     catalog.NewRepository(conn),
		Accounts: users.NewRepository(conn),
		Tx:       db.NewFromConn(conn),
		Outbox:   outbox.NewWriter(nil),
	})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}

	body := []byte(`{
		"name": "Bonneville",
		"brand": "Triumph",
		"category": "cruiser",
		"image_url": "https://img.example.com/bonnie.jpg",
		"description": "Modern classic",
		"specifications": {"engine": "1200cc", "power": "79hp", "torque": "105Nm", "transmission": "6-speed", "weight": "225kg", "fuel_capacity": "14.5L"}
	}`)
	req, _ := withActor(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body)), enums.AccountRoleAdmin)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
	if env := decodeError(t, rec); env.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %+v", env.Error)
	}
	var count int64
	if err := conn.Model(&models.CatalogItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no item to be stored, got %d", count)
	}
}

func TestCatalogCreateRejectsUnknownField(t *testing.T) {
	svc := stubCatalogService{}
	req, _ := withActor(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte(`{"name":"x","color":"red"}`))), enums.AccountRoleAdmin)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCatalogCreateForbiddenForRider(t *testing.T) {
	svc := stubCatalogService{create: func(actor pkgAuth.AuthenticatedContext, _ catalog.CreateItemInput) (*catalog.ItemDTO, error) {
		return nil, actor.RequireAdmin()
	}}
	req, _ := withActor(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte(`{"name":"x"}`))), enums.AccountRoleUser)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestCatalogUpdateOnlyForwardsPresentFields(t *testing.T) {
	var got catalog.UpdateItemInput
	svc := stubCatalogService{update: func(_ uuid.UUID, input catalog.UpdateItemInput) (*catalog.ItemDTO, error) {
		got = input
		return &catalog.ItemDTO{}, nil
	}}
	id := uuid.NewString()
	req, _ := withActor(httptest.NewRequest(http.MethodPut, "/items/"+id, bytes.NewReader([]byte(`{"stock":9,"category":"PACKAGE"}`))), enums.AccountRoleAdmin)
	req = withURLParams(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	CatalogUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got.Stock == nil || *got.Stock != 9 {
		t.Fatalf("expected stock patch")
	}
	if got.Category == nil || *got.Category != enums.ItemCategoryPackage {
		t.Fatalf("expected category patch")
	}
	if got.Name != nil || got.Price != nil {
		t.Fatalf("expected absent fields to stay nil")
	}
}

func TestCatalogAddReview(t *testing.T) {
	itemID := uuid.New()
	var gotInput catalog.ReviewInput
	svc := stubCatalogService{addReview: func(_ pkgAuth.AuthenticatedContext, id uuid.UUID, input catalog.ReviewInput) (*catalog.ItemDTO, error) {
		if id != itemID {
			t.Fatalf("unexpected item %s", id)
		}
		gotInput = input
		return &catalog.ItemDTO{ID: id, Rating: 4}, nil
	}}
	req, _ := withActor(httptest.NewRequest(http.MethodPost, "/items/x/reviews", bytes.NewReader([]byte(`{"rating":4,"comment":"Smooth"}`))), enums.AccountRoleUser)
	req = withURLParams(req, map[string]string{"id": itemID.String()})
	rec := httptest.NewRecorder()
	CatalogAddReview(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if gotInput.Rating != 4 || gotInput.Comment != "Smooth" {
		t.Fatalf("unexpected review input %+v", gotInput)
	}
}
