package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adjust/rmq/v5"
	"github.com/fleetlive/fleetlive/pkg/database"
	"github.com/fleetlive/fleetlive/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

var eventTypes = []string{
	"session-connected",
	"session-disconnected",
	"position-updated",
}

func StartStatsServer() {
	http.Handle("/stats/queues", NewQueueStatsHandler(redis_client.QueueConnection))
	http.Handle("/stats/events", NewEventStatsHandler())
	http.Handle("/health", NewHealthHandler())

	log.Info().Msg("Stats server listening on http://localhost:3333/stats/queues")
	if err := http.ListenAndServe(":3333", nil); err != nil {
		panic(err)
	}
}

type QueueStatsHandler struct {
	redisConnection rmq.Connection
}

func NewQueueStatsHandler(connection rmq.Connection) *QueueStatsHandler {
	return &QueueStatsHandler{redisConnection: connection}
}

func (handler *QueueStatsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	layout := request.FormValue("layout")
	refresh := request.FormValue("refresh")

	queues, err := handler.redisConnection.GetOpenQueues()
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, err)

		return
	}

	queueStats, err := handler.redisConnection.CollectStats(queues)
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, err)

		return
	}

	fmt.Fprint(writer, queueStats.GetHtml(layout, refresh))
}

type EventStatsHandler struct {
}

func NewEventStatsHandler() *EventStatsHandler {
	return &EventStatsHandler{}
}

func (handler *EventStatsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	counters := map[string]int64{}

	for _, eventType := range eventTypes {
		count, err := redis_client.Client.Get(context.Background(), "fleetlive:stats:events:"+eventType).Int64()
		if err != nil {
			count = 0
		}

		counters[eventType] = count
	}

	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(counters)
}

type HealthHandler struct {
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (handler *HealthHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	testRedis := redis_client.Client.ClientID(context.TODO())
	if testRedis.Err() != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, testRedis.Err())

		return
	}

	if database.MongoGlobalInstance != nil {
		testMongo := database.MongoGlobalInstance.Client.Ping(context.TODO(), nil)
		if testMongo != nil {
			writer.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(writer, testMongo)

			return
		}
	}

	writer.WriteHeader(http.StatusOK)
	fmt.Fprint(writer, "OK")
}
