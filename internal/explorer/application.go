package explorer

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/marsha5813/crge-historical-database/internal/common"
	"github.com/marsha5813/crge-historical-database/internal/common/util"
	"github.com/marsha5813/crge-historical-database/internal/explorer/auth"
	"github.com/marsha5813/crge-historical-database/internal/explorer/cache"
	"github.com/marsha5813/crge-historical-database/internal/explorer/configuration"
	"github.com/marsha5813/crge-historical-database/internal/explorer/postgres"
	"github.com/marsha5813/crge-historical-database/internal/explorer/repository"
	"github.com/marsha5813/crge-historical-database/internal/explorer/server"
)

// StartUp wires the explorer together and starts serving. The query cache
// is built once here and shared by every session; credentialed repositories
// are built per request from the session token.
func StartUp(config configuration.ExplorerConfiguration) (shutdown func(), err error) {
	clock := &util.DefaultClock{}
	store := cache.NewStore(clock, config.Cache)
	sessions := auth.NewSessionStore(config.Auth.SessionTimeout)
	identity := auth.NewIdentityClient(config.Auth)

	var newRepository server.RepositoryFactory
	closeBackend := func() {}

	switch config.Backend {
	case configuration.BackendPostgrest, "":
		newRepository = func(token string) repository.EntryRepository {
			return store.Wrap(repository.NewPostgrestEntryRepository(config.Postgrest, token), token)
		}
	case configuration.BackendPostgres:
		db, err := postgres.Open(config.Postgres)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to open postgres connection")
		}
		sqlRepository := repository.NewSQLEntryRepository(db)
		newRepository = func(token string) repository.EntryRepository {
			return store.Wrap(sqlRepository, token)
		}
		closeBackend = func() {
			if err := db.Close(); err != nil {
				log.Errorf("failed to close db connection: %v", err)
			}
		}
	default:
		return nil, errors.Errorf("unknown backend kind %q", config.Backend)
	}

	explorerServer := server.New(sessions, identity, newRepository)
	shutdownServer := common.ServeHttp(config.HttpPort, explorerServer.Routes())

	return func() {
		shutdownServer()
		closeBackend()
	}, nil
}
