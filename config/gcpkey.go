// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// googleMapsKeyDisplayName is the display name of the API key resource
// provisioned for this project in GCP.
const googleMapsKeyDisplayName = "Prospecta Geocoding Key"

// ResolveGoogleMapsKey returns the Google Maps API key for the google_maps
// geocoding provider. The configured key wins; otherwise the key is looked up
// through Application Default Credentials and the API Keys service.
func (c *Config) ResolveGoogleMapsKey(ctx context.Context) (string, error) {
	if c.Geocoding.GoogleMapsAPIKey != "" {
		return c.Geocoding.GoogleMapsAPIKey, nil
	}

	log.Println("geocoding.google_maps_api_key is not set, attempting to retrieve via ADC")

	return getAPIKeyFromADC(ctx)
}

func getAPIKeyFromADC(ctx context.Context) (string, error) {
	// 1. Get Project ID from ADC
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID found in default credentials")
	}

	// 2. Create API Keys client
	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	// 3. List keys to find the one with the expected display name
	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != googleMapsKeyDisplayName {
			continue
		}

		// ListKeys and GetKey redact the KeyString.
		// We must use GetKeyString to retrieve the secret.
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{
			Name: key.Name,
		})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but KeyString is empty", googleMapsKeyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", googleMapsKeyDisplayName, projectID)
}
