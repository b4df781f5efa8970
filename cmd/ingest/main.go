package main

import (
	"context"
	"flag"
	"log"

	"github.com/aihub/textbook-rag/app/bootstrap"
	"github.com/aihub/textbook-rag/internal/config"
	"github.com/aihub/textbook-rag/internal/logger"
	"go.uber.org/zap"
)

// 语料摄取命令：切分教材markdown、生成向量并写入向量库。
// 重复运行会追加新记录而不是覆盖旧记录。
func main() {
	corpusRoot := flag.String("corpus", "", "corpus root directory (defaults to corpus.root from config)")
	flag.Parse()

	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	root := *corpusRoot
	if root == "" {
		root = config.GetAppConfig().Corpus.Root
	}
	if root == "" {
		logger.Fatal("no corpus root configured, pass -corpus or set corpus.root")
	}

	stats, err := app.Ingestor.EmbedAndStore(context.Background(), root)
	if err != nil {
		if stats != nil {
			logger.Warn("ingestion aborted after partial upload",
				zap.Int("uploaded", stats.Uploaded),
				zap.Error(err))
		}
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	logger.Info("ingestion complete",
		zap.Int("files", stats.Files),
		zap.Int("chunks", stats.Chunks),
		zap.Int("embed_failures", stats.EmbedFailures),
		zap.Int("uploaded", stats.Uploaded))
}
