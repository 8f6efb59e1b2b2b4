package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"xiview-api/database"
	"xiview-api/metrics"
	"xiview-api/services"
)

// XiviewReader is the query layer as seen by the handlers.
type XiviewReader interface {
	MostRecentUploadIDs(ctx context.Context, projectID, fileName string) (database.UploadIDs, error)
	PeakList(ctx context.Context, spectrumID string, spectraDataID, uploadID int64) (*services.PeakList, error)
	Metadata(ctx context.Context, ids database.UploadIDs) (*services.Metadata, error)
	Matches(ctx context.Context, ids database.UploadIDs) ([]services.MatchRecord, error)
	Peptides(ctx context.Context, ids database.UploadIDs) ([]services.PeptideRecord, error)
	Proteins(ctx context.Context, ids database.UploadIDs) ([]services.ProteinRecord, error)
	Datasets(ctx context.Context) ([]services.Dataset, error)
	Visualisations(ctx context.Context, projectID string) ([]services.Visualisation, error)
	Sequences(ctx context.Context, ids database.UploadIDs) ([]services.SequenceRecord, error)
	ResiduePairs(ctx context.Context, ids database.UploadIDs, passingOnly bool) ([]services.ResiduePair, error)
}

// Options configures the router.
type Options struct {
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	RoutePrefix     string
	SuppressedPaths []string
	AllowOrigins    []string
	// Health reports whether the database is reachable. Nil means healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires middleware and all routes below opts.RoutePrefix.
func NewRouter(svc XiviewReader, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log, opts.SuppressedPaths))
	router.Use(metrics.Middleware(opts.Metrics))
	if len(opts.AllowOrigins) > 0 {
		router.Use(CORS(opts.AllowOrigins))
	}

	root := router.Group(opts.RoutePrefix)
	setupDataRoutes(root, svc, log, opts.Metrics)
	setupPDBDevRoutes(root, svc, log, opts.Metrics)
	setupOpsRoutes(root, opts)
	return router
}

// projectHandler resolves ?project=&file= to the current uploads and runs
// query against them.
func projectHandler[T any](svc XiviewReader, log *zap.Logger, m *metrics.Metrics, name string, query func(context.Context, database.UploadIDs) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.Query("project")
		if project == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing project parameter"})
			return
		}
		file := c.Query("file")
		ctx := c.Request.Context()

		ids, err := svc.MostRecentUploadIDs(ctx, project, file)
		if err != nil {
			dbError(c, log, "Resolving uploads failed", err, zap.String("project", project), zap.String("file", file))
			return
		}
		data, err := query(ctx, ids)
		if err != nil {
			dbError(c, log, "Query failed", err, zap.String("query", name), zap.String("project", project))
			return
		}
		writeJSON(c, log, m, http.StatusOK, data)
	}
}

func setupDataRoutes(root *gin.RouterGroup, svc XiviewReader, log *zap.Logger, m *metrics.Metrics) {
	rg := root.Group("/data")

	rg.GET("/get_peaklist", func(c *gin.Context) {
		id := c.Query("id")
		sdRef, errSD := strconv.ParseInt(c.Query("sd_ref"), 10, 64)
		uploadID, errUp := strconv.ParseInt(c.Query("upload_id"), 10, 64)
		if id == "" || errSD != nil || errUp != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id, sd_ref and upload_id are required"})
			return
		}

		pl, err := svc.PeakList(c.Request.Context(), id, sdRef, uploadID)
		switch {
		case errors.Is(err, services.ErrSpectrumNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "spectrum not found"})
			return
		case errors.Is(err, services.ErrMalformedPeakData), errors.Is(err, services.ErrPeakLengthMismatch):
			log.Error("Stored peak list is corrupt", zap.String("id", id), zap.Int64("upload_id", uploadID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "malformed peak data"})
			return
		case err != nil:
			dbError(c, log, "Peak list query failed", err, zap.String("id", id))
			return
		}
		writeJSON(c, log, m, http.StatusOK, pl)
	})

	rg.GET("/get_xiview_metadata", projectHandler(svc, log, m, "metadata", svc.Metadata))
	rg.GET("/get_xiview_matches", projectHandler(svc, log, m, "matches", svc.Matches))
	rg.GET("/get_xiview_peptides", projectHandler(svc, log, m, "peptides", svc.Peptides))
	rg.GET("/get_xiview_proteins", projectHandler(svc, log, m, "proteins", svc.Proteins))

	rg.GET("/get_datasets", func(c *gin.Context) {
		data, err := svc.Datasets(c.Request.Context())
		if err != nil {
			dbError(c, log, "Datasets query failed", err)
			return
		}
		writeJSON(c, log, m, http.StatusOK, data)
	})

	rg.GET("/visualisations/:project_id", func(c *gin.Context) {
		project := c.Param("project_id")
		data, err := svc.Visualisations(c.Request.Context(), project)
		if err != nil {
			dbError(c, log, "Visualisations query failed", err, zap.String("project", project))
			return
		}
		writeJSON(c, log, m, http.StatusOK, data)
	})
}

func setupPDBDevRoutes(root *gin.RouterGroup, svc XiviewReader, log *zap.Logger, m *metrics.Metrics) {
	rg := root.Group("/pdbdev/projects/:project_id")

	rg.GET("/sequences", func(c *gin.Context) {
		project := c.Param("project_id")
		ctx := c.Request.Context()
		ids, err := svc.MostRecentUploadIDs(ctx, project, "")
		if err != nil {
			dbError(c, log, "Resolving uploads failed", err, zap.String("project", project))
			return
		}
		data, err := svc.Sequences(ctx, ids)
		if err != nil {
			dbError(c, log, "Sequences query failed", err, zap.String("project", project))
			return
		}
		writeJSON(c, log, m, http.StatusOK, gin.H{"data": data})
	})

	rg.GET("/residue-pairs/psm-level/:passing_threshold", func(c *gin.Context) {
		project := c.Param("project_id")
		passingOnly, err := services.ParseThresholdFilter(c.Param("passing_threshold"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		ids, err := svc.MostRecentUploadIDs(ctx, project, "")
		if err != nil {
			dbError(c, log, "Resolving uploads failed", err, zap.String("project", project))
			return
		}
		data, err := svc.ResiduePairs(ctx, ids, passingOnly)
		if err != nil {
			dbError(c, log, "Residue pair query failed", err, zap.String("project", project))
			return
		}
		writeJSON(c, log, m, http.StatusOK, gin.H{"data": data})
	})

	rg.GET("/reported-thresholds", func(c *gin.Context) {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "reported thresholds are not available"})
	})
}

func setupOpsRoutes(root *gin.RouterGroup, opts Options) {
	root.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := promhttp.Handler()
	if opts.Gatherer != nil {
		handler = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	}
	root.GET("/metrics", gin.WrapH(handler))
}
