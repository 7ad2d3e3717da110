package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docvault/internal/auth"
	"docvault/internal/model"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Document{{ID: uuid.New().String(), Title: "A"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestSearchDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/search", SearchDocuments(mockSvc))

	t.Run("passes the term through", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "HELLO").
			Return([]model.Document{{ID: uuid.New().String(), Content: "hello world"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/search?term=HELLO", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing term matches everything", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "").
			Return([]model.Document{{ID: "1"}, {ID: "2"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 2)
	})

	t.Run("no match yields an empty array", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "zzz").Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/search?term=zzz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Empty(t, result)
	})
}

func TestCreateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", CreateDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		newID := uuid.New().String()
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in model.DocumentInput) bool {
			return in.Title == "A" && in.Content == "hello world" && len(in.Tags) == 1
		})).Return(newID, nil).Once()

		body := `{"title":"A","content":"hello world","tags":["x"],"summary":null,"rating":null}`
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result map[string]string
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, newID, result["id"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader("{not json"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_BODY", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return("", errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"title":"A"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Document{ID: id, Title: "A"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "invalid-uuid").Return(nil, service.ErrInvalidID).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Put("/documents/:id", UpdateDocument(mockSvc))

	body := `{"title":"new","content":"body","tags":["y"]}`

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(in model.DocumentInput) bool {
			return in.Title == "new"
		})).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/"+id, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.Anything).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/"+id, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, "bogus", mock.Anything).Return(service.ErrInvalidID).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/bogus", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/documents/"+uuid.New().String(), strings.NewReader("{not json"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "bogus").Return(service.ErrInvalidID).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/bogus", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Post("/upload/:documentId", UploadAttachment(mockSvc))

	t.Run("success", func(t *testing.T) {
		docID := uuid.New().String()
		payload := []byte("%PDF-1.4 pretend")
		mockSvc.On("Upload", mock.Anything, docID, mock.Anything, int64(len(payload))).
			Return(&model.Attachment{ID: uuid.New().String(), DocumentID: docID}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload/"+docID, bytes.NewReader(payload))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Attachment
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, docID, result.DocumentID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload/"+uuid.New().String(), nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("payload too large", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Upload", mock.Anything, docID, mock.Anything, mock.Anything).
			Return(nil, service.ErrTooLarge).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload/"+docID, strings.NewReader("too big"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Upload", mock.Anything, docID, mock.Anything, mock.Anything).
			Return(nil, errors.New("upload to storage: io fail")).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload/"+docID, strings.NewReader("bytes"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestFetchAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/pdf/:documentId", FetchAttachment(mockSvc))

	t.Run("streams the blob", func(t *testing.T) {
		docID := uuid.New().String()
		payload := "%PDF mini"
		mockSvc.On("Fetch", mock.Anything, docID).
			Return(io.NopCloser(strings.NewReader(payload)), &model.Attachment{DocumentID: docID}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, payload, string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Fetch", mock.Anything, docID).Return(nil, nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("presign redirects", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("PresignFetch", mock.Anything, docID, presignExpiry).
			Return("https://blobs.example/signed", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/"+docID+"?presign=true", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "https://blobs.example/signed", resp.Header.Get(fiber.HeaderLocation))
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Delete("/pdf/:documentId", DeleteAttachment(mockSvc))

	t.Run("success", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, docID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/pdf/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, docID).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/pdf/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("blob delete failure surfaces as 500", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, docID).
			Return(errors.New("delete blob attachments/x.pdf: io fail")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/pdf/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	keyring := auth.NewKeyring([]string{"valid-key"})
	mockDocSvc := new(serviceMocks.MockDocumentService)
	mockAttSvc := new(serviceMocks.MockAttachmentService)
	// Register all routes
	RegisterRoutes(app, nil, keyring, mockDocSvc, mockAttSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("data routes demand the api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health does not demand the api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("valid key reaches the handler", func(t *testing.T) {
		mockDocSvc.On("List", mock.Anything).Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		req.Header.Set("X-API-Key", "valid-key")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockDocSvc.AssertExpectations(t)
	})
}
