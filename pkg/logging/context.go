package logging

import (
	"context"
)

const (
	TraceIDKey      = "trace_id"
	DeliveryIDKey   = "delivery_id"
	StorefrontIDKey = "storefront_id"
	ServiceNameKey  = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithDeliveryID(ctx context.Context, deliveryID string) context.Context {
	return context.WithValue(ctx, DeliveryIDKey, deliveryID)
}

func WithStorefrontID(ctx context.Context, storefrontID string) context.Context {
	return context.WithValue(ctx, StorefrontIDKey, storefrontID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func GetDeliveryID(ctx context.Context) string {
	if deliveryID, ok := ctx.Value(DeliveryIDKey).(string); ok {
		return deliveryID
	}
	return ""
}

func GetStorefrontID(ctx context.Context) string {
	if storefrontID, ok := ctx.Value(StorefrontIDKey).(string); ok {
		return storefrontID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if deliveryID := GetDeliveryID(ctx); deliveryID != "" {
		fields = append(fields, "delivery_id", deliveryID)
	}

	if storefrontID := GetStorefrontID(ctx); storefrontID != "" {
		fields = append(fields, "storefront_id", storefrontID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
