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

package sops

import (
	"errors"
	"fmt"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	jsonstore "github.com/getsops/sops/v3/stores/json"
	"github.com/getsops/sops/v3/version"
)

var (
	ErrNoMasterKey   = errors.New("sops: a GCP KMS resource ID or AWS KMS key ARN is required")
	ErrAlreadySealed = errors.New("sops: object is already sealed")
	ErrNotSealed     = errors.New("sops: object is not a sealed document")
)

// Keys names the KMS master keys that seal remote record objects. Each
// non-empty key source becomes its own key group, so any one of them can
// open the object.
type Keys struct {
	GCPResourceID string
	AWSKeyARNs    string
	AWSProfile    string
}

func (k Keys) IsZero() bool {
	return k.GCPResourceID == "" && k.AWSKeyARNs == ""
}

func (k Keys) keyGroups() ([]sopsapi.KeyGroup, error) {
	keyGroups := []sopsapi.KeyGroup{}
	if k.GCPResourceID != "" {
		keys := []skeys.MasterKey{}
		for _, mk := range gcpkms.MasterKeysFromResourceIDString(k.GCPResourceID) {
			keys = append(keys, mk)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}
	if k.AWSKeyARNs != "" {
		keys := []skeys.MasterKey{}
		for _, mk := range awskms.MasterKeysFromArnString(k.AWSKeyARNs, nil, k.AWSProfile) {
			keys = append(keys, mk)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}
	if len(keyGroups) == 0 {
		return nil, ErrNoMasterKey
	}
	return keyGroups, nil
}

// Sealer wraps record objects in SOPS binary documents
type Sealer struct {
	keyGroups []sopsapi.KeyGroup
	store     *jsonstore.BinaryStore
}

func NewSealer(keys Keys) (*Sealer, error) {
	keyGroups, err := keys.keyGroups()
	if err != nil {
		return nil, err
	}
	return &Sealer{
		keyGroups: keyGroups,
		store:     jsonstore.NewBinaryStore(&config.JSONBinaryStoreConfig{}),
	}, nil
}

// Sealed reports whether data parses as a SOPS document with metadata
func (s *Sealer) Sealed(data []byte) bool {
	_, err := s.store.LoadEncryptedFile(data)
	return err == nil
}

// Seal encrypts one record object under a fresh data key
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	if s.Sealed(data) {
		return nil, ErrAlreadySealed
	}
	branches, err := s.store.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("sops: load object: %w", err)
	}
	tree := sopsapi.Tree{
		Branches: branches,
		Metadata: sopsapi.Metadata{
			KeyGroups: s.keyGroups,
			Version:   version.Version,
		},
	}
	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("sops: generate data key: %v", errs)
	}
	if err := scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	}); err != nil {
		return nil, fmt.Errorf("sops: encrypt object: %w", err)
	}
	sealed, err := s.store.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("sops: emit object: %w", err)
	}
	return sealed, nil
}

// Open decrypts an object produced by Seal
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if !s.Sealed(data) {
		return nil, ErrNotSealed
	}
	ret, err := decrypt.Data(data, "binary")
	if err != nil {
		return nil, fmt.Errorf("sops: decrypt object: %w", err)
	}
	return ret, nil
}
