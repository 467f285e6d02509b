package httpapi

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-dashboard/internal/blob"
	"github.com/i474232898/weather-dashboard/internal/photos"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// defaultDescription is stored when a history entry arrives without one.
const defaultDescription = "Weather data"

// Services are the collaborators behind the routes.
type Services struct {
	Weather *weather.Service
	Store   store.Store
	Photos  *photos.Service
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, s Services) {
	h := &handlers{Services: s}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})
	if s.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	api.Get("/weather/:city", h.getWeather)

	api.Get("/history", h.listHistory)
	api.Post("/history", h.addHistory)
	api.Delete("/history/:id", h.deleteHistory)

	api.Get("/notes", h.listNotes)
	api.Get("/notes/city/:city", h.listCityNotes)
	api.Post("/notes", h.addNote)
	api.Put("/notes/:id", h.updateNote)
	api.Delete("/notes/:id", h.deleteNote)

	api.Get("/cities/:city/photos", h.listCityPhotos)
	api.Post("/cities/:city/photos", h.uploadPhoto)
	api.Delete("/photos/:id", h.deletePhoto)
	api.Get("/images/*", h.getImage)
}

type handlers struct {
	Services
}

type historyRequest struct {
	City        string `json:"city" validate:"required"`
	Description string `json:"description"`
}

type noteRequest struct {
	City string `json:"city" validate:"required"`
	Note string `json:"note" validate:"required"`
}

type noteUpdateRequest struct {
	Note string `json:"note" validate:"required"`
}

func (h *handlers) getWeather(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	snap, err := h.Weather.Lookup(c.UserContext(), city)
	if err != nil {
		if errors.Is(err, weather.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "city not found")
		}
		return fiber.NewError(fiber.StatusBadGateway, "weather providers unavailable")
	}
	return c.JSON(snap)
}

func (h *handlers) listHistory(c *fiber.Ctx) error {
	entries, err := h.Store.ListHistory(c.UserContext())
	if err != nil {
		h.Log.Error().Err(err).Msg("list history")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch history")
	}
	return c.JSON(orEmpty(entries))
}

func (h *handlers) addHistory(c *fiber.Ctx) error {
	var req historyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.City = strings.TrimSpace(req.City)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}
	if req.Description == "" {
		req.Description = defaultDescription
	}

	entry, err := h.Store.AddHistory(c.UserContext(), req.City, req.Description)
	if err != nil {
		h.Log.Error().Err(err).Str("city", req.City).Msg("add history")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to add history")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "History added",
		"data":    entry,
	})
}

func (h *handlers) deleteHistory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	// Deleting an entry that is already gone is not an error.
	if err := h.Store.DeleteHistory(c.UserContext(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.Log.Error().Err(err).Int64("id", id).Msg("delete history")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete history")
	}
	return c.JSON(fiber.Map{"message": "History item deleted"})
}

func (h *handlers) listNotes(c *fiber.Ctx) error {
	notes, err := h.Store.ListNotes(c.UserContext())
	if err != nil {
		h.Log.Error().Err(err).Msg("list notes")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch notes")
	}
	return c.JSON(fiber.Map{"notes": orEmpty(notes)})
}

func (h *handlers) listCityNotes(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}
	notes, err := h.Store.ListCityNotes(c.UserContext(), city)
	if err != nil {
		h.Log.Error().Err(err).Str("city", city).Msg("list city notes")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch notes")
	}
	return c.JSON(fiber.Map{"notes": orEmpty(notes)})
}

func (h *handlers) addNote(c *fiber.Ctx) error {
	var req noteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.City = strings.TrimSpace(req.City)
	req.Note = strings.TrimSpace(req.Note)
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "city and note are required")
	}

	note, err := h.Store.AddNote(c.UserContext(), req.City, req.Note)
	if err != nil {
		h.Log.Error().Err(err).Str("city", req.City).Msg("add note")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to add note")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Note added",
		"data":    note,
	})
}

func (h *handlers) updateNote(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req noteUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Note = strings.TrimSpace(req.Note)
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "note is required")
	}

	note, err := h.Store.UpdateNote(c.UserContext(), id, req.Note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		h.Log.Error().Err(err).Int64("id", id).Msg("update note")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update note")
	}
	return c.JSON(fiber.Map{
		"message": "Note updated",
		"data":    note,
	})
}

func (h *handlers) deleteNote(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteNote(c.UserContext(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.Log.Error().Err(err).Int64("id", id).Msg("delete note")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete note")
	}
	return c.JSON(fiber.Map{"message": "Note deleted"})
}

func (h *handlers) listCityPhotos(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}
	list, err := h.Store.ListCityPhotos(c.UserContext(), city)
	if err != nil {
		h.Log.Error().Err(err).Str("city", city).Msg("list photos")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch photos")
	}
	return c.JSON(fiber.Map{"photos": orEmpty(list)})
}

func (h *handlers) uploadPhoto(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no photo file provided")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read photo file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read photo file")
	}

	photo, err := h.Photos.Upload(c.UserContext(), city, fh.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, photos.ErrNoFile), errors.Is(err, photos.ErrNoCity):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, photos.ErrNotImage):
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "only JPEG, PNG and WebP images are accepted")
		}
		h.Log.Error().Err(err).Str("city", city).Str("file", fh.Filename).Msg("upload photo")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to upload photo")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Photo uploaded",
		"imageUrl": photo.ImageURL,
		"data":     photo,
	})
}

func (h *handlers) deletePhoto(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Photos.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		}
		h.Log.Error().Err(err).Int64("id", id).Msg("delete photo")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete photo")
	}
	return c.JSON(fiber.Map{"message": "Photo deleted"})
}

func (h *handlers) getImage(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("*"))
	if err != nil || key == "" {
		return fiber.NewError(fiber.StatusNotFound, "image not found")
	}

	obj, err := h.Photos.Image(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
			return fiber.NewError(fiber.StatusNotFound, "image not found")
		}
		h.Log.Error().Err(err).Str("key", key).Msg("read image")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read image")
	}

	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Send(obj.Data)
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// cityParam returns the unescaped, trimmed :city segment. The value is
// copied because fiber reuses the request buffer after the handler returns.
func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(utils.CopyString(c.Params("city")))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city")
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "city is required")
	}
	return city, nil
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
