package response

import (
	"encoding/xml"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/status"
)

type xmlUser struct {
	XMLName xml.Name `xml:"user"`
	Name    string   `xml:"name"`
}

func newTestResponse(s *Settings) (*Response, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if s != nil {
		req = req.WithContext(WithSettings(req.Context(), s))
	}
	return New(rec, req), rec
}

func TestResponse_JSONEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		reveal bool
		want   string
	}{
		{"development reveals message", true, `{"status":{"code":1000,"message":"Request completed"},"data":{"a":1}}`},
		{"production hides message", false, `{"status":{"code":1000,"message":""},"data":{"a":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.Reveal = tt.reveal
			res, rec := newTestResponse(s)

			require.NoError(t, res.JSON(status.Success, map[string]int{"a": 1}))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, tt.want, rec.Body.String())
			assert.True(t, res.Written())
		})
	}
}

func TestResponse_JSONUnknownCodeWritesNothing(t *testing.T) {
	s := DefaultSettings()
	s.Reveal = true
	res, rec := newTestResponse(s)

	err := res.JSON(424242, map[string]any{})

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownStatusCode))
	assert.False(t, res.Written())
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
	assert.False(t, rec.Flushed)
}

func TestResponse_DefaultSettingsWithoutContext(t *testing.T) {
	res, rec := newTestResponse(nil)

	require.NoError(t, res.JSON(status.NotFound, nil))
	assert.JSONEq(t, `{"status":{"code":4000,"message":""},"data":null}`, rec.Body.String())
}

func TestResponse_ContentTyped(t *testing.T) {
	tests := []struct {
		name        string
		call        func(*Response)
		wantType    string
		wantBody    string
		wantContain bool
	}{
		{"text", func(r *Response) { r.Text("hello") }, "text/plain", "hello", false},
		{"html", func(r *Response) { r.HTML("<p>hi</p>") }, "text/html", "<p>hi</p>", false},
		{"xml string verbatim", func(r *Response) { r.XML("<a>1</a>") }, "application/xml", "<a>1</a>", false},
		{"xml value marshalled", func(r *Response) { r.XML(xmlUser{Name: "ada"}) }, "application/xml", "<user><name>ada</name></user>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rec := newTestResponse(nil)
			tt.call(res)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			if tt.wantContain {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			} else {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			assert.True(t, res.Written())
		})
	}
}

func TestResponse_FixedStatusHelpers(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Response)
		wantCode int
		wantBody string
	}{
		{"bad request", (*Response).BadRequest, 400, "Bad Request"},
		{"unauthorized", (*Response).Unauthorized, 401, "Unauthorized"},
		{"payment required", (*Response).PaymentRequired, 402, "Payment Required"},
		{"forbidden", (*Response).Forbidden, 403, "Forbidden"},
		{"not found", (*Response).NotFound, 404, "Not Found"},
		{"conflict", (*Response).Conflict, 409, "Conflict"},
		{"too many requests", (*Response).TooManyRequests, 429, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rec := newTestResponse(nil)
			tt.call(res)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestResponse_StatusOnly(t *testing.T) {
	res, rec := newTestResponse(nil)
	res.NoContent()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	res, rec = newTestResponse(nil)
	res.Created()
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.True(t, res.Written())

	res, rec = newTestResponse(nil)
	res.Status(http.StatusAccepted)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestResponse_Render(t *testing.T) {
	views := fstest.MapFS{
		"hello.html":  {Data: []byte(`<h1>Hello {{.Name}}</h1>`)},
		"broken.html": {Data: []byte(`<p>partial</p>{{index .Items 3}}`)},
	}
	engine, err := NewTemplateEngine(views)
	require.NoError(t, err)

	t.Run("renders view", func(t *testing.T) {
		s := DefaultSettings()
		s.Views = engine
		res, rec := newTestResponse(s)

		require.NoError(t, res.Render("hello.html", map[string]string{"Name": "<b>"}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Equal(t, "<h1>Hello &lt;b&gt;</h1>", rec.Body.String())
	})

	t.Run("unknown view", func(t *testing.T) {
		s := DefaultSettings()
		s.Views = engine
		res, rec := newTestResponse(s)

		assert.Error(t, res.Render("absent.html", nil))
		assert.False(t, res.Written())
		assert.Empty(t, rec.Body.String())
	})

	t.Run("execution failure writes nothing", func(t *testing.T) {
		s := DefaultSettings()
		s.Views = engine
		res, rec := newTestResponse(s)

		err := res.Render("broken.html", map[string]any{"Items": []string{"a"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index out of range")
		assert.False(t, res.Written())
		assert.Empty(t, rec.Body.String())
	})

	t.Run("no engine", func(t *testing.T) {
		res, _ := newTestResponse(nil)
		assert.ErrorIs(t, res.Render("hello.html", nil), errors.ErrNoViewEngine)
	})
}

func TestNewTemplateEngine_NoMatches(t *testing.T) {
	_, err := NewTemplateEngine(fstest.MapFS{"a.txt": {Data: []byte("x")}})
	assert.Error(t, err)
}
