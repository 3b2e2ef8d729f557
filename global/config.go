package global

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	mongoutil "EduTalk/data/database/mgo/mongoutil"
	"EduTalk/logger"
	mid "EduTalk/middleware"
	midsec "EduTalk/middleware/security"
	"EduTalk/service/mgo"
	"EduTalk/service/natsx"
	redissrv "EduTalk/service/storage/redis"
	"EduTalk/tools/ids"
	jwtlib "EduTalk/tools/security"

	"go.uber.org/zap"
)

// ConfigAll boots every shared collaborator in dependency order.
// Mongo and Redis are required; NATS is optional (no broker, no
// fan-out).
func ConfigAll(ctx context.Context) error {
	ConfigIds()
	ConfigAuth()
	if err := ConfigRedis(); err != nil {
		return err
	}
	if err := ConfigMgo(ctx); err != nil {
		return err
	}
	ConfigNats()
	return nil
}

func ConfigIds() {
	ids.SetNodeID(envInt64("EDUTALK_NODE_ID", 1))
}

func GetJwtOptions() jwtlib.Options {
	secret := envStr("EDUTALK_JWT_SECRET", "mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")
	opts := jwtlib.DefaultOptions([]byte(secret))
	opts.TTL = 24 * time.Hour
	return opts
}

func ConfigAuth() {
	mid.ConfigAuth(midsec.Options{JWT: GetJwtOptions()})
}

func ConfigRedis() error {
	return redissrv.InitRedis(redissrv.Config{
		Addr:     envStr("EDUTALK_REDIS_ADDR", "127.0.0.1:6379"),
		Password: envStr("EDUTALK_REDIS_PASSWORD", ""),
		DB:       int(envInt64("EDUTALK_REDIS_DB", 0)),
	})
}

func ConfigMgo(ctx context.Context) error {
	cfg := &mongoutil.Config{
		Uri:         envStr("EDUTALK_MONGO_URI", "mongodb://localhost:27017"),
		Database:    envStr("EDUTALK_MONGO_DB", "edutalk"),
		Username:    envStr("EDUTALK_MONGO_USER", ""),
		Password:    envStr("EDUTALK_MONGO_PASSWORD", ""),
		MaxPoolSize: 20,
		MaxRetry:    3,
	}
	return mgo.Init(ctx, cfg)
}

// Nats holds the shared notifier; nil when no broker is configured.
var Nats *natsx.Notifier

func ConfigNats() {
	servers := envStr("EDUTALK_NATS_SERVERS", "")
	if servers == "" {
		return
	}
	n, err := natsx.Connect(natsx.Config{
		Servers: strings.Split(servers, ","),
		Name:    "edutalk-chat",
	})
	if err != nil {
		logger.Warn("nats unavailable, fan-out disabled", zap.Error(err))
		return
	}
	Nats = n
}

func GetServerAddr() string {
	return envStr("EDUTALK_ADDR", ":8080")
}

func GetUploadDir() string {
	return envStr("EDUTALK_UPLOAD_DIR", "uploads")
}

// Upload ceilings in bytes; 0 means unlimited.
func GetMaxImageBytes() int64 { return envInt64("EDUTALK_MAX_IMAGE_MB", 50) * 1024 * 1024 }
func GetMaxVideoBytes() int64 { return envInt64("EDUTALK_MAX_VIDEO_MB", 200) * 1024 * 1024 }
func GetMaxFileBytes() int64  { return envInt64("EDUTALK_MAX_FILE_MB", 200) * 1024 * 1024 }
func GetMaxAudioBytes() int64 { return envInt64("EDUTALK_MAX_AUDIO_MB", 0) * 1024 * 1024 }

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
