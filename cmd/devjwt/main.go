package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/club-registry/internal/platform/auth/jwks_testutil"
	"github.com/Overland-East-Bay/club-registry/internal/platform/logging"
)

// Tiny dev-only JWT issuer + JWKS server.
//
// This is NOT a full OIDC provider. It exists so local runs can mint RS256 tokens for
// the root subject and for ordinary subjects against real JWKS verification.

type devConfig struct {
	Port      string        `env:"PORT"       envDefault:"5556"`
	Issuer    string        `env:"ISSUER"     envDefault:"http://devjwt:5556"`
	Audience  string        `env:"AUDIENCE"   envDefault:"club-registry"`
	Kid       string        `env:"KID"        envDefault:"dev-kid-1"`
	TTL       time.Duration `env:"TTL"        envDefault:"30m"`
	LogLevel  string        `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string        `env:"LOG_FORMAT" envDefault:"text"`
}

func main() {
	var cfg devConfig
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("parse env")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("logging config")
	}

	kp, err := jwks_testutil.GenerateRSAKeypair(cfg.Kid)
	if err != nil {
		log.WithError(err).Fatal("generate key")
	}
	jwksJSON, err := jwks_testutil.MarshalJWKS([]jwks_testutil.Keypair{kp})
	if err != nil {
		log.WithError(err).Fatal("marshal jwks")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(jwksJSON)
	})

	// Mint a JWT:
	//   GET /token?sub=root|admin
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		// Small nbf skew tolerance for local use.
		nbf := -5 * time.Second
		token, err := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, cfg.Audience, sub, now, cfg.TTL, &nbf)
		if err != nil {
			log.WithError(err).Error("mint token")
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}
		log.WithField("sub", sub).Debug("minted token")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"sub":   sub,
			"iss":   cfg.Issuer,
			"aud":   cfg.Audience,
			"exp":   now.Add(cfg.TTL).Unix(),
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"port": cfg.Port,
		"iss":  cfg.Issuer,
		"aud":  cfg.Audience,
		"kid":  cfg.Kid,
		"ttl":  cfg.TTL.String(),
	}).Info("devjwt listening")
	log.Fatal(srv.ListenAndServe())
}
