package server_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/stretchr/testify/assert"
)

func TestRequestCollection(t *testing.T) {
	engine, ctrl, r := setup(t)
	header := header(t, ctrl)

	r.GET("/collections/k3x9qa").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"not-found","message":"collection not found"}}`, r.Body.String())
	})

	r.PUT("/collections/k3x9qa").SetHeader(header).SetJSON(gofight.D{
		"name": "Shared binder",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var collection gmset.Collection
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &collection))
		assert.Equal(t, "k3x9qa", collection.ID)
		assert.Equal(t, "Shared binder", collection.Name)
		assert.NotNil(t, collection.CreatedAt)
	})

	r.GET("/collections/k3x9qa").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var collection gmset.Collection
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &collection))
		assert.Equal(t, "Shared binder", collection.Name)
	})

	r.PUT("/collections/zzzzzz").SetHeader(header).SetJSON(gofight.D{
		"id": "zzzzzz",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var collection gmset.Collection
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &collection))
		assert.Equal(t, gmset.DefaultCollectionName, collection.Name)
	})

	r.PUT("/collections/zzzzzz").SetHeader(header).SetJSON(gofight.D{
		"id": "k3x9qa",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"immutable-field","message":"Collection id mismatch."}}`, r.Body.String())
	})

	r.PUT("/collections/zzzzzz").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-parameters","message":"Could not get collection params."}}`, r.Body.String())
	})
}
