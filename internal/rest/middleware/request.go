package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hjemly/hjemly/internal/types"
)

func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// PartnerContextMiddleware maps the caller identity headers onto the request
// context. Authentication happens upstream; the partner ID defaults so local
// runs work without a gateway in front.
func PartnerContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	partnerID := c.GetHeader(types.HeaderPartnerID)
	if partnerID == "" {
		partnerID = types.DefaultPartnerID
	}
	ctx = types.SetPartnerID(ctx, partnerID)

	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
