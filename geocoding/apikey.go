// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// APIKeyDisplayName is the display name of the Maps key in the Cloud project.
const APIKeyDisplayName = "Transporte Geocoding Key"

// APIKeyFromADC looks up the Maps API key through Application Default
// Credentials. projectID overrides the project found in the credentials.
func APIKeyFromADC(ctx context.Context, projectID string) (string, error) {
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("finding default credentials: %w", err)
		}

		projectID = creds.ProjectID
	}

	// user credentials without a quota project carry no project id
	if projectID == "" {
		return "", errors.New("no project id in credentials, set GOOGLE_CLOUD_PROJECT")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.GetDisplayName() != APIKeyDisplayName {
			continue
		}

		// ListKeys redacts the secret.
		log.Debugf("Found key resource '%s', retrieving secret...", key.GetName())

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.GetName()})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.GetKeyString() == "" {
			return "", fmt.Errorf("key '%s' found but its key string is empty", APIKeyDisplayName)
		}

		return resp.GetKeyString(), nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", APIKeyDisplayName, projectID)
}
