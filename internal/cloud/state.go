// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file is responsible for initializing and holding all the client
// objects needed to communicate with Google Cloud. It acts as a dependency
// injection container: a single `ServiceClients` struct is created at process
// start and passed to the workflows.
//
// Logic Flow:
//  1. `NewCloudServiceClients` is called at application startup with the loaded `Config`.
//  2. It always creates the Storage and Video Intelligence clients.
//  3. It creates the Pub/Sub client (and one listener per configured subscription)
//     only when subscriptions are configured, and the BigQuery client only when
//     the processed-video set is stored in BigQuery.
//  4. The storage client is wrapped in a `GCSStore`, then in a `QuotaAwareBlobStore`.
//
// Structs:
//   - ServiceClients: A container struct holding all initialized Google Cloud service clients.
//
// Functions:
//   - Close: A convenience method to gracefully shut down all client connections.
//   - NewCloudServiceClients: A factory function that creates and configures all necessary
//     Google Cloud clients based on the application's configuration.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"google.golang.org/api/option"
)

// ServiceClients is a struct that acts as a central container for all the clients
// that interact with external Google Cloud services. Optional clients are nil
// when the configuration does not need them.
type ServiceClients struct {
	StorageClient   *storage.Client            // Client for Google Cloud Storage (GCS).
	VideoClient     *videointelligence.Client  // Client for the Video Intelligence API.
	PubsubClient    *pubsub.Client             // Client for Google Cloud Pub/Sub; nil without subscriptions.
	BigQueryClient  *bigquery.Client           // Client for BigQuery; nil unless the processed store uses it.
	PubSubListeners map[string]*PubSubListener // Active Pub/Sub listeners, keyed by a logical name from the config.
	BlobStore       BlobStore                  // The bucket, wrapped with write pacing.
	Annotator       VideoAnnotator             // The analysis backend.
}

// Close is a utility method to gracefully shut down all the active client connections.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.VideoClient != nil {
		_ = c.VideoClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
}

// NewCloudServiceClients is a factory function that initializes the Google Cloud
// service clients required by the provided configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			cloud.Close()
			cloud = nil
		}
	}()

	storageOptions := make([]option.ClientOption, 0)
	if config.Storage.Endpoint != "" {
		storageOptions = append(storageOptions, option.WithEndpoint(config.Storage.Endpoint), option.WithoutAuthentication())
	}
	cloud.StorageClient, err = storage.NewClient(ctx, storageOptions...)
	if err != nil {
		return nil, err
	}

	cloud.VideoClient, err = videointelligence.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	if len(config.TopicSubscriptions) > 0 {
		cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, err
		}
		// The command is attached later, once the workflows are built.
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				return nil, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	if config.ProcessedStore.Backend == ProcessedStoreBigQuery {
		cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, err
		}
	}

	cloud.BlobStore = NewQuotaAwareBlobStore(
		NewGCSStore(cloud.StorageClient, config.Storage.Bucket),
		config.Storage.WritesPerSecond,
		config.Storage.WriteBurst,
	)
	cloud.Annotator = NewVideoIntelligenceAnnotator(cloud.VideoClient)

	slog.Info("cloud clients ready",
		"project", config.Application.GoogleProjectId,
		"bucket", config.Storage.Bucket,
		"pubsub", cloud.PubsubClient != nil,
		"bigquery", cloud.BigQueryClient != nil)
	return cloud, nil
}
