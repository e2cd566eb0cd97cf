/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smarttech/storefront"
	"github.com/smarttech/storefront/config"
	redis_db "github.com/smarttech/storefront/internal/redis-db"
)

// initializeQueues weights webhook delivery below customer-facing
// notifications.
func initializeQueues(cfg *config.Configuration) map[string]int {
	return map[string]int{
		cfg.Queue.NotificationQueue: 3,
		cfg.Queue.WebhookQueue:      1,
	}
}

func workerRedisOpt(conf *config.Configuration) (asynq.RedisClientOpt, error) {
	if conf.Redis.Dns == "" {
		return asynq.RedisClientOpt{}, errors.New("workers need redis: set redis.dns or REDIS_URL")
	}
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("error parsing Redis URL: %v", err)
	}
	return redis_db.AsynqOpt(redisOption), nil
}

func initializeWorkerServer(conf *config.Configuration, opt asynq.RedisClientOpt) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: conf.Queue.Concurrency,
		Queues:      initializeQueues(conf),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logrus.WithFields(logrus.Fields{
				"task":    task.Type(),
				"retried": retried,
			}).WithError(err).Warn("task failed")
		}),
	})
}

func initializeTaskHandlers(sf *storefront.Storefront, mux *asynq.ServeMux) {
	mux.HandleFunc(storefront.TaskOrderCreated, sf.ProcessNotification)
	mux.HandleFunc(storefront.TaskOrderStatus, sf.ProcessNotification)
	mux.HandleFunc(storefront.TaskWebhook, sf.ProcessWebhook)
}

// workerCommands defines the "workers" command. Workers deliver order
// notifications and outbound webhooks queued by the API server.
func workerCommands(app *storefrontInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start storefront workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conf := app.cnf

			shutdown, err := initializeTracing(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			opt, err := workerRedisOpt(conf)
			if err != nil {
				log.Fatal(err)
			}

			srv := initializeWorkerServer(conf, opt)
			mux := asynq.NewServeMux()
			initializeTaskHandlers(app.storefront, mux)

			h := asynqmon.New(asynqmon.Options{
				RootPath:     "/monitoring",
				RedisConnOpt: opt,
			})
			defer h.Close()

			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				monitor := &http.Server{Addr: monitoringAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
				if err := monitor.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			// Run blocks until SIGTERM or SIGINT, then waits for active tasks.
			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
