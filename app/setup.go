package app

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/focusmonitor/engagement-api/api"
	"github.com/focusmonitor/engagement-api/config"
	"github.com/focusmonitor/engagement-api/database"
	"github.com/focusmonitor/engagement-api/router"
	"github.com/focusmonitor/engagement-api/services/cron"
	"github.com/focusmonitor/engagement-api/services/engagement"
	"github.com/focusmonitor/engagement-api/services/objectstore"
	"github.com/focusmonitor/engagement-api/services/stream"
	"github.com/focusmonitor/engagement-api/utils"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// The GORM store is the default and always runs: it migrates and
	// serves the auth auxiliary tables. STORAGE_DRIVER=pq swaps the
	// credential and prediction stores onto the raw lib/pq driver.
	gormStore, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}

	if err := gormStore.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	var store database.Storage = gormStore
	var pqStore *database.PostgreSQLStore
	if getEnv.STORAGE_DRIVER == "pq" {
		pqStore, err = database.Start()
		if err != nil {
			return err
		}
		if err := pqStore.Init(); err != nil {
			return err
		}
		store = pqStore
	}

	db, ok := gormStore.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get GORM DB instance")
	}

	// Fetch the classifier artifact from object storage when configured
	// and not already present locally
	if getEnv.ARTIFACT_OBJECT_KEY != "" {
		if _, statErr := os.Stat(getEnv.ARTIFACT_PATH); os.IsNotExist(statErr) {
			spaces, err := objectstore.NewSpacesClient(objectstore.SpacesConfig{
				AccessKey: getEnv.SPACES_ACCESS_KEY,
				SecretKey: getEnv.SPACES_SECRET_KEY,
				Bucket:    getEnv.SPACES_BUCKET,
				Region:    getEnv.SPACES_REGION,
				Endpoint:  getEnv.SPACES_ENDPOINT,
			})
			if err != nil {
				return fmt.Errorf("failed to create object storage client: %w", err)
			}
			if err := spaces.DownloadToFile(getEnv.ARTIFACT_OBJECT_KEY, getEnv.ARTIFACT_PATH); err != nil {
				return fmt.Errorf("failed to download model bundle: %w", err)
			}
		}
	}

	// The classifier bundle is loaded once and shared read-only
	bundle, err := engagement.LoadBundle(getEnv.ARTIFACT_PATH)
	if err != nil {
		return err
	}
	pipeline := engagement.NewPipeline(bundle)

	fileLog := utils.NewLogger()
	fileLog.Log(fmt.Sprintf("loaded classifier bundle %s (%d features, %d trees)",
		getEnv.ARTIFACT_PATH, bundle.FeatureCount(), len(bundle.Forest.Trees)))

	// Live prediction fan-out
	broker := stream.NewBroker(stream.DefaultBufferSize)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(db)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if pqStore != nil {
			pqStore.Close()
		}
		gormStore.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store, db, pipeline, broker)

	// Get the PORT & Start the Server
	return server.Run()
}
