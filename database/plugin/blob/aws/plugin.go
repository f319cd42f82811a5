// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"sync"

	"github.com/blinklabs-io/solcat/database/plugin"
	"github.com/blinklabs-io/solcat/database/sops"
)

var (
	cmdlineOptions struct {
		endpoint         string
		bucket           string
		region           string
		prefix           string
		kmsGCPResourceID string
		kmsAWSKeyARNs    string
		kmsAWSProfile    string
	}
	cmdlineOptionsMutex sync.RWMutex
)

// Register plugin
func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "s3",
			Description:        "AWS S3 record store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "endpoint",
					Type:         plugin.PluginOptionTypeString,
					Description:  "S3 endpoint",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.endpoint),
				},
				{
					Name:         "bucket",
					Type:         plugin.PluginOptionTypeString,
					Description:  "S3 bucket name",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.bucket),
				},
				{
					Name:         "region",
					Type:         plugin.PluginOptionTypeString,
					Description:  "AWS region",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.region),
				},
				{
					Name:         "prefix",
					Type:         plugin.PluginOptionTypeString,
					Description:  "S3 object key prefix",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.prefix),
				},
				{
					Name:         "kms-gcp-resource-id",
					Type:         plugin.PluginOptionTypeString,
					Description:  "GCP KMS key resource ID that seals stored objects",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.kmsGCPResourceID),
				},
				{
					Name:         "kms-aws-key-arns",
					Type:         plugin.PluginOptionTypeString,
					Description:  "comma-separated AWS KMS key ARNs that seal stored objects",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.kmsAWSKeyARNs),
				},
				{
					Name:         "kms-aws-profile",
					Type:         plugin.PluginOptionTypeString,
					Description:  "AWS profile used for the KMS keys",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.kmsAWSProfile),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := []BlobStoreS3OptionFunc{
		WithEndpoint(cmdlineOptions.endpoint),
		WithBucket(cmdlineOptions.bucket),
		WithRegion(cmdlineOptions.region),
		WithPrefix(cmdlineOptions.prefix),
		WithKMSKeys(sops.Keys{
			GCPResourceID: cmdlineOptions.kmsGCPResourceID,
			AWSKeyARNs:    cmdlineOptions.kmsAWSKeyARNs,
			AWSProfile:    cmdlineOptions.kmsAWSProfile,
		}),
		WithLogger(plugin.SharedLogger()),
		WithPromRegistry(plugin.SharedPromRegistry()),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := NewWithOptions(opts...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
