package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const refreshTimeout = time.Minute

// Feed реализует store.Store
type Feed interface {
	Snapshot() model.Snapshot
	Next() model.Snapshot
	Previous() model.Snapshot
	Select(i int) model.Snapshot
	CurrentItem() (model.Item, bool)
	Refresh(ctx context.Context, force bool) (model.Snapshot, error)
}

// New возвращает fiber.App с JSON API панели и метриками.
func New(feed Feed, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())

	// Латентность каждого запроса в debug лог
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(logrus.Fields{
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    time.Since(start),
		}).Debug("request handled")

		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/feed")

	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(toResponse(feed.Snapshot()))
	})

	api.Get("/current", func(c *fiber.Ctx) error {
		item, ok := feed.CurrentItem()
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(toItemResponse(item))
	})

	api.Post("/next", func(c *fiber.Ctx) error {
		return c.JSON(toResponse(feed.Next()))
	})

	api.Post("/previous", func(c *fiber.Ctx) error {
		return c.JSON(toResponse(feed.Previous()))
	})

	// Индекс за пределами ленты не ошибка: возвращаем ленту без изменений
	api.Post("/select/:index", func(c *fiber.Ctx) error {
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "index must be an integer"})
		}
		return c.JSON(toResponse(feed.Select(index)))
	})

	// По умолчанию обновление принудительное, ?force=false включает троттлинг
	api.Post("/refresh", func(c *fiber.Ctx) error {
		force := c.QueryBool("force", true)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		snapshot, err := feed.Refresh(ctx, force)
		switch {
		case errors.Is(err, aggregator.ErrNoNews):
			return c.Status(fiber.StatusNotFound).JSON(toResponse(snapshot))
		case err != nil:
			log.WithError(err).Error("refresh from panel")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "refresh failed"})
		}

		return c.JSON(toResponse(snapshot))
	})

	return app
}

type itemResponse struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Time        int64    `json:"time"`
	By          string   `json:"by,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Descendants *int     `json:"descendants,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

type feedResponse struct {
	Items        []itemResponse `json:"items"`
	CurrentIndex int            `json:"currentIndex"`
	LastFetch    *int64         `json:"lastFetchTime,omitempty"`
}

func toItemResponse(item model.Item) itemResponse {
	return itemResponse{
		Title:       item.Title,
		URL:         item.URL,
		Source:      item.Source,
		Time:        item.Unix(),
		By:          item.By,
		Score:       item.Score,
		Descendants: item.Descendants,
		Excerpt:     item.Excerpt,
		Thumbnail:   item.Thumbnail,
		Categories:  item.Categories,
	}
}

func toResponse(snapshot model.Snapshot) feedResponse {
	resp := feedResponse{
		Items:        make([]itemResponse, 0, len(snapshot.Items)),
		CurrentIndex: snapshot.Index,
	}

	for _, item := range snapshot.Items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}

	if !snapshot.FetchedAt.IsZero() {
		unix := snapshot.FetchedAt.Unix()
		resp.LastFetch = &unix
	}

	return resp
}
