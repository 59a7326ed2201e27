package main

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/deppfellow/notify-dispatch/internal/app"
	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/deppfellow/notify-dispatch/internal/handler"
	"github.com/deppfellow/notify-dispatch/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	a, err := app.New(context.Background(), cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	lambda.Start(proxyHandler(a.Handlers.Notification))
}

type requestHandler interface {
	Handle(ctx context.Context, req handler.Request) handler.Response
}

// proxyHandler adapts the notification handler to API Gateway proxy
// events. The handler's Response is never an invocation error.
func proxyHandler(h requestHandler) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := event.Body
		if event.IsBase64Encoded && body != "" {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				de := errs.NewInvalidPayload(err)
				return toProxyResponse(handler.Response{StatusCode: de.Status(), Body: de.Body()}), nil
			}
			body = string(decoded)
		}

		resp := h.Handle(ctx, handler.Request{Body: body})
		return toProxyResponse(resp), nil
	}
}

func toProxyResponse(resp handler.Response) events.APIGatewayProxyResponse {
	contentType := "text/plain; charset=UTF-8"
	if resp.StatusCode == 200 {
		contentType = "application/json"
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": contentType},
		Body:       resp.Body,
	}
}
