package container

import (
	"context"
	"fmt"
	"io"

	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/changelogsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/appstore/pkg/cache"
	"github.com/yusufsyaifudin/appstore/pkg/mailclient"
	"github.com/yusufsyaifudin/appstore/pkg/uid"
	"github.com/yusufsyaifudin/ylog"
)

type Services interface {
	io.Closer

	UIDGen() uid.UID
	Auth() authsvc.Service
	App() appsvc.Service
	Changelog() changelogsvc.Service
	Rating() ratingsvc.Service
}

type ServicesImpl struct {
	uidGen    uid.UID
	auth      authsvc.Service
	app       appsvc.Service
	changelog changelogsvc.Service
	rating    ratingsvc.Service
	mailer    mailclient.Client
}

var _ Services = (*ServicesImpl)(nil)

// SetupServices builds every service. redisConns may be nil when no service is configured to use redis.
func SetupServices(cfg Config, repos Repositories, redisConns *RedisConnMaker) (svc *ServicesImpl, err error) {
	if repos == nil {
		err = fmt.Errorf("nil repositories on services preparation")
		return
	}

	if err = cfg.Validate(); err != nil {
		err = fmt.Errorf("services config error: %w", err)
		return
	}

	uidGen, err := uid.NewSonyflake()
	if err != nil {
		return
	}

	svcCfg := cfg.Services

	// ** Prepare app repository, optionally behind cache
	appRepo, err := repos.AppRepo(svcCfg.App.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get app repo: %w", err)
		return
	}

	appCache, err := setupCache(svcCfg.App.Cache, redisConns)
	if err != nil {
		err = fmt.Errorf("services cannot prepare app cache: %w", err)
		return
	}

	if appCache != nil {
		appRepo, err = apprepo.NewCached(apprepo.CachedConfig{
			Persistent:     appRepo,
			CacheExpiry:    svcCfg.App.Cache.Expiry,
			CachePrefixKey: "app",
			Cache:          appCache,
		})
		if err != nil {
			err = fmt.Errorf("services cannot prepare cached app repo: %w", err)
			return
		}
	}

	// ** Prepare auth service
	accountRepo, err := repos.AccountRepo(svcCfg.Auth.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get account repo: %w", err)
		return
	}

	sessionRepo, err := setupSessionRepo(cfg, repos, redisConns)
	if err != nil {
		err = fmt.Errorf("services cannot get session repo: %w", err)
		return
	}

	tokens, err := authsvc.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		err = fmt.Errorf("services cannot prepare token issuer: %w", err)
		return
	}

	mailer, err := setupMailer(cfg.Mail)
	if err != nil {
		err = fmt.Errorf("services cannot prepare mailer: %w", err)
		return
	}

	authService, err := authsvc.New(authsvc.DefaultServiceConfig{
		UIDGen:         uidGen,
		AccountRepo:    accountRepo,
		SessionRepo:    sessionRepo,
		Tokens:         tokens,
		Mailer:         mailer,
		MailFrom:       cfg.Mail.From,
		PublicBaseURL:  cfg.App.PublicBaseURL,
		EnforceSession: cfg.Auth.EnforceSession == nil || *cfg.Auth.EnforceSession,
		BcryptCost:     cfg.Auth.BcryptCost,
		ImageMaxBytes:  cfg.Images.MaxBytes,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare auth service: %w", err)
		return
	}

	// ** Prepare app service
	appService, err := appsvc.New(appsvc.DefaultServiceConfig{
		UIDGen:        uidGen,
		AppRepo:       appRepo,
		ImageMaxBytes: cfg.Images.MaxBytes,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare app service: %w", err)
		return
	}

	// ** Prepare changelog service
	changelogRepo, err := repos.ChangelogRepo(svcCfg.Changelog.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get changelog repo: %w", err)
		return
	}

	changelogService, err := changelogsvc.New(changelogsvc.DefaultServiceConfig{
		UIDGen:        uidGen,
		AppRepo:       appRepo,
		ChangelogRepo: changelogRepo,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare changelog service: %w", err)
		return
	}

	// ** Prepare rating service
	ratingRepo, err := repos.RatingRepo(svcCfg.Rating.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get rating repo: %w", err)
		return
	}

	ratingService, err := ratingsvc.New(ratingsvc.DefaultServiceConfig{
		UIDGen:     uidGen,
		AppRepo:    appRepo,
		RatingRepo: ratingRepo,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare rating service: %w", err)
		return
	}

	svc = &ServicesImpl{
		uidGen:    uidGen,
		auth:      authService,
		app:       appService,
		changelog: changelogService,
		rating:    ratingService,
		mailer:    mailer,
	}

	return svc, nil
}

// setupCache returns nil cache when driver is none.
func setupCache(cfg ConfigCache, redisConns *RedisConnMaker) (cache.Cache, error) {
	switch cfg.Driver {
	case CacheDriverNone, "":
		return nil, nil

	case CacheDriverMemory:
		return cache.NewInMemory(cfg.MaxBytes)

	case CacheDriverRedis:
		if redisConns == nil {
			return nil, fmt.Errorf("cache driver redis needs redisResources")
		}

		client, err := redisConns.Get(cfg.RedisLabel)
		if err != nil {
			return nil, err
		}

		return cache.NewRedis(cache.RedisConfig{Client: client})

	default:
		return nil, fmt.Errorf("unknown cache driver '%s'", cfg.Driver)
	}
}

func setupSessionRepo(cfg Config, repos Repositories, redisConns *RedisConnMaker) (sessionrepo.Repo, error) {
	switch cfg.Auth.SessionStore {
	case SessionStorePostgres, "":
		return repos.SessionRepo(cfg.Services.Auth.DBLabel)

	case SessionStoreRedis:
		sessionCache, err := setupCache(ConfigCache{
			Driver:     CacheDriverRedis,
			RedisLabel: cfg.Auth.SessionRedisLabel,
		}, redisConns)
		if err != nil {
			return nil, err
		}

		return sessionrepo.NewCacheStore(sessionrepo.CacheStoreConfig{
			Cache:          sessionCache,
			CachePrefixKey: "session",
		})

	default:
		return nil, fmt.Errorf("unknown session store '%s'", cfg.Auth.SessionStore)
	}
}

// setupMailer returns log only mailer unless smtp is enabled.
func setupMailer(cfg ConfigMail) (mailclient.Client, error) {
	if !cfg.Enabled {
		return mailclient.NewLogMailer(), nil
	}

	cred := cfg.Credential
	return mailclient.NewSmtp(&mailclient.SmtpMailerConfig{
		EmailCredential: &cred,
	})
}

func (s *ServicesImpl) UIDGen() uid.UID {
	return s.uidGen
}

func (s *ServicesImpl) Auth() authsvc.Service {
	return s.auth
}

func (s *ServicesImpl) App() appsvc.Service {
	return s.app
}

func (s *ServicesImpl) Changelog() changelogsvc.Service {
	return s.changelog
}

func (s *ServicesImpl) Rating() ratingsvc.Service {
	return s.rating
}

// Close closes the mailer connection, the repositories are closed by its owner.
func (s *ServicesImpl) Close() error {
	if s == nil || s.mailer == nil {
		return nil
	}

	if err := s.mailer.Close(); err != nil {
		ylog.Error(context.Background(), "close mailer error", ylog.KV("error", err))
		return err
	}

	return nil
}
