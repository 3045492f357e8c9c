package sellers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/internal/testgen"
	"github.com/kitobxon/kitobxon/pkg/binder"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlers(t *testing.T) {
	db := testgen.NewDB(t)
	library := testgen.CreateSeller(t, db, "Alisher Navoiy kutubxonasi", models.SellerTypeLibrary)
	zebo := testgen.CreateBook(t, db, testgen.BookOptions{Title: "Zebo"})
	anor := testgen.CreateBook(t, db, testgen.BookOptions{Title: "Anor"})
	testgen.CreateListing(t, db, library, zebo, models.TransactionTypeBorrow, 0)
	testgen.CreateListing(t, db, library, anor, models.TransactionTypeBorrow, 0)
	testgen.CreateListing(t, db, library, anor, models.TransactionTypeFree, 0)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutesWithGroup(e.Group("/sellers"), db)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	t.Run("retrieves a seller", func(t *testing.T) {
		rec := get("/sellers/" + library.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got models.Seller
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, library.Name, got.Name)
		assert.Equal(t, models.SellerTypeLibrary, got.Type)
	})

	t.Run("lists each stocked book once by title", func(t *testing.T) {
		rec := get("/sellers/" + library.ID + "/books")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Books []models.Book `json:"books"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Books, 2)
		assert.Equal(t, "Anor", body.Books[0].Title)
		assert.Equal(t, "Zebo", body.Books[1].Title)
	})

	t.Run("unknown sellers are 404", func(t *testing.T) {
		id := uuid.New().String()
		assert.Equal(t, http.StatusNotFound, get("/sellers/"+id).Code)
		assert.Equal(t, http.StatusNotFound, get("/sellers/"+id+"/books").Code)
	})

	t.Run("malformed ids are 422", func(t *testing.T) {
		assert.Equal(t, http.StatusUnprocessableEntity, get("/sellers/missing").Code)
		assert.Equal(t, http.StatusUnprocessableEntity, get("/sellers/missing/books").Code)
	})
}
