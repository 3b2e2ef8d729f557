package main

import (
	"context"
	"os"

	"EduTalk/global"
	"EduTalk/logger"
	mid "EduTalk/middleware"
	"EduTalk/module/chat/handler"
	"EduTalk/module/chat/service"
	"EduTalk/module/chat/store"
	"EduTalk/module/chat/upload"
	"EduTalk/service/mgo"
	"EduTalk/service/storage"
	redissrv "EduTalk/service/storage/redis"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	defer logger.Sync()

	ctx := context.Background()
	if err := global.ConfigAll(ctx); err != nil {
		logger.Error("boot failed", zap.Error(err))
		os.Exit(1)
	}
	defer mgo.Close(context.Background())
	defer redissrv.CloseRedis()
	defer global.Nats.Close()

	st := store.NewMongoStore(mgo.GetDB(), mgo.GetTx())
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		os.Exit(1)
	}

	saver := &upload.Saver{
		BaseDir:  global.GetUploadDir(),
		MaxImage: global.GetMaxImageBytes(),
		MaxVideo: global.GetMaxVideoBytes(),
		MaxAudio: global.GetMaxAudioBytes(),
		MaxFile:  global.GetMaxFileBytes(),
	}
	svc := service.New(st, storage.NewRedisPresence(redissrv.GetRedis()), global.Nats, saver)

	r := gin.New()
	r.Use(gin.Recovery(), mid.Origin())
	r.Static("/uploads", global.GetUploadDir())
	handler.Register(r, handler.New(svc))

	addr := global.GetServerAddr()
	logger.Info("chat service listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
