package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-extractor/internal/common"
	"github.com/i474232898/weather-extractor/internal/store"
	"github.com/i474232898/weather-extractor/internal/weather"
)

var validate = validator.New()

// Extractor runs the extraction pipeline.
type Extractor interface {
	Run(ctx context.Context, q weather.Query) (*weather.Result, error)
	Catalog() *weather.Catalog
}

// NewApp returns a Fiber app with the centralized JSON error handler.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          5 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, extractor Extractor, runs weather.Store) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-extractor",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/groups", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"groups": extractor.Catalog().All()})
	})

	v1.Get("/groups/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		vars, err := extractor.Catalog().Variables(id)
		if err != nil {
			if errors.Is(err, weather.ErrUnknownGroup) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to look up group")
		}
		return c.JSON(weather.VariableGroup{ID: id, Variables: vars})
	})

	v1.Get("/extract", func(c *fiber.Ctx) error {
		var req extractQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		q, err := req.toQuery(extractor.Catalog())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := extractor.Run(c.UserContext(), q)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrInvalidDateRange), errors.Is(err, weather.ErrInvalidResolution):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, weather.ErrNoDataRetrieved):
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "extraction failed")
			}
		}

		if !req.Summary {
			return c.JSON(res)
		}

		return c.JSON(fiber.Map{
			"run_id":          res.RunID,
			"resolution":      res.Resolution,
			"data":            res.Table,
			"warnings":        res.Warnings,
			"dropped_columns": res.Dropped,
			"daily_summary":   weather.DailySummary(res.Table),
		})
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req runsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		if req.From.IsZero() && req.To.IsZero() {
			latest, err := runs.GetLatest(loc)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "no runs recorded for requested location")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch run history")
			}
			return c.JSON(latest)
		}

		history, err := runs.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs recorded for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch run history")
		}
		return c.JSON(fiber.Map{
			"location": loc,
			"from":     req.From,
			"to":       req.To,
			"runs":     history,
		})
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{Latitude: l.Latitude, Longitude: l.Longitude}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return q, errors.New("latitude and longitude query parameters are required")
	}

	var err error
	if q.Latitude, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("latitude must be a number")
	}
	if q.Longitude, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, errors.New("longitude must be a number")
	}
	return q, nil
}

// extractQuery holds query parameters for the extract endpoint.
type extractQuery struct {
	Location   locationQuery
	StartDate  string `validate:"required,datetime=2006-01-02"`
	EndDate    string `validate:"required,datetime=2006-01-02"`
	Groups     []string
	Resolution string `validate:"omitempty,oneof=hourly daily monthly"`
	Summary    bool
}

func (e *extractQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	e.Location = loc
	e.StartDate = c.Query("start_date")
	e.EndDate = c.Query("end_date")
	e.Groups = common.SplitList(c.Query("groups"))
	e.Resolution = c.Query("resolution")
	e.Summary = c.QueryBool("summary", false)
	return nil
}

// toQuery builds the pipeline query. Without a groups parameter every
// catalog group is enabled. Unknown ids are ignored, but at least one
// known group must remain.
func (e *extractQuery) toQuery(catalog *weather.Catalog) (weather.Query, error) {
	rng, err := weather.ParseDateRange(e.StartDate, e.EndDate)
	if err != nil {
		return weather.Query{}, err
	}
	groups := e.Groups
	if len(groups) == 0 {
		groups = catalog.Groups()
	} else if !anyKnown(catalog, groups) {
		return weather.Query{}, fmt.Errorf("%w: none of %s", weather.ErrUnknownGroup, strings.Join(groups, ", "))
	}
	return weather.Query{
		Location:   e.Location.toLocation(),
		Range:      rng,
		Groups:     common.EnabledSet(groups),
		Resolution: weather.Resolution(e.Resolution),
	}, nil
}

func anyKnown(catalog *weather.Catalog, ids []string) bool {
	for _, id := range ids {
		if catalog.Has(id) {
			return true
		}
	}
	return false
}

// runsQuery holds query parameters for the run history endpoint.
type runsQuery struct {
	Location locationQuery
	From     time.Time
	To       time.Time `validate:"omitempty,gtefield=From"`
}

func (r *runsQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	r.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		return nil
	}
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters must be given together")
	}

	if r.From, err = parseTime(fromStr); err != nil {
		return err
	}
	if r.To, err = parseTime(toStr); err != nil {
		return err
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
