package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(apiclient.New(srv.URL))
}

func TestListingClient_SearchPassesParams(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings/listings", r.URL.Path)
		assert.Equal(t, "RENT", r.URL.Query().Get("listingType"))
		assert.False(t, r.URL.Query().Has("minPrice"))
		fmt.Fprint(w, `{"message":"ok","data":[
			{"id":"l1","price":12000000,"listingType":"RENT","bedrooms":2,"updatedAt":"2025-02-01T08:00:00"},
			{"id":"l2","price":9000000,"listingType":"RENT","property":{"propertyId":"p2","address":{"city":"Hà Nội","latitude":21.0,"longitude":105.8}}}
		]}`)
	})

	got, err := b.Listings.Search(context.Background(), url.Values{"listingType": {"RENT"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ListingTypeRent, got[0].ListingType)
	assert.Equal(t, 2025, got[0].UpdatedAt.Year())
	require.NotNil(t, got[1].Property)
	assert.Equal(t, "Hà Nội", got[1].Property.Address.City)
}

func TestListingClient_SearchRejectsInvalidPayload(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"l1","price":-5,"listingType":"SALE"}]}`)
	})

	_, err := b.Listings.Search(context.Background(), nil)
	assert.ErrorContains(t, err, "schema validation")
}

func TestListingClient_UpdateMarksSold(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/listings/listings/l7", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"isSold":true}`, string(body))
		fmt.Fprint(w, `{"data":{"id":"l7","price":1,"listingType":"SALE","isSold":true}}`)
	})

	sold := true
	got, err := b.Listings.Update(context.Background(), "l7", &models.UpdateListingRequest{IsSold: &sold})
	require.NoError(t, err)
	assert.True(t, got.IsSold)
}

func TestListingClient_CreateSendsMultipart(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "SALE", r.FormValue("listingType"))
		assert.Equal(t, "3", r.FormValue("bedrooms"))
		assert.Len(t, r.MultipartForm.File["images"], 2)
		assert.Len(t, r.MultipartForm.File["featuredImage"], 1)
		fmt.Fprint(w, `{"data":{"id":"new","price":100,"listingType":"SALE"}}`)
	})

	got, err := b.Listings.Create(context.Background(), &models.AddListingRequest{
		PropertyID:    "p1",
		Name:          "Nhà phố",
		Price:         100,
		ListingType:   models.ListingTypeSale,
		Bedrooms:      3,
		Images:        []models.ImageUpload{{Filename: "a.jpg", Data: []byte("a")}, {Filename: "b.jpg", Data: []byte("b")}},
		FeaturedImage: &models.ImageUpload{Filename: "f.jpg", Data: []byte("f")},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestPropertyClient_GetUnwrapsArray(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"ok","data":[{"propertyId":"p1","propertyType":"VILLA"}]}`)
	})

	got, err := b.Properties.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PropertyTypeVilla, got.PropertyType)
}

func TestUserClient_NotFound(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"User not found"}`)
	})

	_, err := b.Users.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestUserClient_RoleEndpoints(t *testing.T) {
	var seen []string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		fmt.Fprint(w, `{"message":"ok"}`)
	})

	ctx := context.Background()
	require.NoError(t, b.Users.AddRole(ctx, "u1", models.RoleAgent))
	require.NoError(t, b.Users.RemoveRole(ctx, "u1", models.RoleAgent))
	require.NoError(t, b.Users.Disable(ctx, "u1"))
	assert.Equal(t, []string{
		"PATCH /securities/users/u1/roles/ROLE_AGENT",
		"DELETE /securities/users/u1/roles/ROLE_AGENT",
		"PATCH /securities/users/u1/disable",
	}, seen)
}

func TestAuthClient_RefreshUsesQueryAndNoBearer(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/securities/auth/refresh", r.URL.Path)
		assert.Equal(t, "rt-1", r.URL.Query().Get("refreshToken"))
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"status":"OK","data":{"accessToken":"at-2","refreshToken":"rt-2","id":"u1","roles":["ROLE_USER"]}}`)
	})

	got, err := b.Auth.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", got.AccessToken)
	assert.Equal(t, "rt-2", got.RefreshToken)
}

func TestAuthClient_RegisterRejectsMismatchedPasswords(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := b.Auth.Register(context.Background(), &models.RegisterRequest{Password: "a", ConfirmPassword: "b"})
	assert.Error(t, err)
}

func TestTransactions_ByProperty(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("propertyId"))
		switch r.URL.Path {
		case "/sales/transactions":
			fmt.Fprint(w, `{"data":[{"id":"s1","price":2000000000,"status":"COMPLETED","updatedAt":"2023-01-01T00:00:00"}]}`)
		case "/rentals/transactions":
			fmt.Fprint(w, `{"data":[{"id":"r1","price":15000000,"status":"EXPIRED"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	sales, err := b.Sales.ByProperty(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, models.TransactionCompleted, sales[0].Status)

	rentals, err := b.Rentals.ByProperty(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, models.TransactionExpired, rentals[0].Status)
}

func TestWalletClient_TopUpAndMonthlyDeposits(t *testing.T) {
	now := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/wallets/w1/topup":
			assert.Equal(t, "500000", r.URL.Query().Get("amount"))
			fmt.Fprint(w, `{"data":{"id":"w1","userId":"u1","balance":700000,"status":"ACTIVE"}}`)
		case "/payments/transactions":
			q := r.URL.Query()
			assert.Equal(t, "w1", q.Get("walletId"))
			assert.Equal(t, "TOPUP", q.Get("type"))
			assert.Equal(t, "2025-03-01T00:00:00Z", q.Get("startDate"))
			txs := []models.PaymentTransaction{
				{ID: "t1", Amount: 100000, Status: models.PaymentSuccess},
				{ID: "t2", Amount: 50000, Status: models.PaymentFailed},
				{ID: "t3", Amount: 250000.5, Status: models.PaymentSuccess},
			}
			data, _ := json.Marshal(txs)
			fmt.Fprintf(w, `{"data":%s}`, data)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	wallet, err := b.Wallets.TopUp(context.Background(), "w1", decimal.NewFromInt(500000))
	require.NoError(t, err)
	assert.Equal(t, float64(700000), wallet.Balance)

	total, err := b.Transactions.MonthlyDeposits(context.Background(), "w1", now)
	require.NoError(t, err)
	assert.Equal(t, "350000.5", total.String())
}

func TestListingClient_LocationAndAddressLookups(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/listings/listings/location":
			assert.Equal(t, "21.03", q.Get("latitude"))
			assert.Equal(t, "105.85", q.Get("longitude"))
			assert.Equal(t, "5", q.Get("maxDistanceKm"))
			fmt.Fprint(w, `{"data":[{"id":"l1","price":1,"listingType":"SALE"}]}`)
		case "/listings/listings/address":
			assert.Equal(t, "Cầu Giấy", q.Get("keyword"))
			fmt.Fprint(w, `{"data":[{"id":"l2","price":2,"listingType":"RENT"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	near, err := b.Listings.ByLocation(context.Background(), 21.03, 105.85, 5)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "l1", near[0].ID)

	byAddr, err := b.Listings.ByAddress(context.Background(), "Cầu Giấy")
	require.NoError(t, err)
	require.Len(t, byAddr, 1)
	assert.Equal(t, "l2", byAddr[0].ID)
}

func TestPropertyClient_WriteEndpoints(t *testing.T) {
	var seen []string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"amenities":["Gym","Parking"]`)
		}
		fmt.Fprint(w, `{"data":{"propertyId":"p9","propertyType":"HOUSE","amenities":["Gym","Parking"]}}`)
	})

	ctx := context.Background()
	created, err := b.Properties.Create(ctx, &models.AddPropertyRequest{
		Address:      models.Address{City: "Hà Nội"},
		PropertyType: models.PropertyTypeHouse,
		Amenities:    []string{"Gym", "Parking"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gym", "Parking"}, created.Amenities)

	year := 2010
	_, err = b.Properties.Update(ctx, "p9", &models.UpdatePropertyRequest{YearBuilt: &year})
	require.NoError(t, err)
	require.NoError(t, b.Properties.Delete(ctx, "p9"))
	assert.Equal(t, []string{
		"POST /listings/properties",
		"PUT /listings/properties/p9",
		"DELETE /listings/properties/p9",
	}, seen)
}

func TestUserClient_ProfileEndpoints(t *testing.T) {
	var seen []string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"fullName":"Trần Lan"}`, string(body))
		}
		fmt.Fprint(w, `{"data":{"id":"u2","username":"lan","fullName":"Trần Lan"}}`)
	})

	ctx := context.Background()
	byName, err := b.Users.GetByUsername(ctx, "lan")
	require.NoError(t, err)
	assert.Equal(t, "u2", byName.ID)

	name := "Trần Lan"
	updated, err := b.Users.Update(ctx, "u2", &models.UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Trần Lan", updated.FullName)

	require.NoError(t, b.Users.Delete(ctx, "u2"))
	assert.Equal(t, []string{
		"GET /securities/users/username/lan",
		"PUT /securities/users/u2",
		"DELETE /securities/users/u2",
	}, seen)
}
