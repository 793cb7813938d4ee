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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// first command of the dataset refresh workflow.
//
// Logic Flow:
// A refresh is started either by the periodic timer or by a message published
// to the refresh topic. Both deliver a JSON document (possibly empty) that is
// parsed here into a model.RefreshRequest.
//
//  1. An empty payload, or one without a scope, means a full countries refresh.
//  2. A regions refresh must name the country by its ISO alpha-3 code.
//  3. The parsed request becomes the input of the next command.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/cor"
	"github.com/jaycherian/gcp-go-covid-dashboard/internal/core/model"
)

// RefreshTriggerReader parses a refresh trigger message.
type RefreshTriggerReader struct {
	cor.BaseCommand
}

// NewRefreshTriggerReader is the constructor for the RefreshTriggerReader command.
func NewRefreshTriggerReader(name string) *RefreshTriggerReader {
	return &RefreshTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw message held in the input parameter.
func (c *RefreshTriggerReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Failed(context, fmt.Errorf("refresh trigger must be a string, got %T", context.Get(c.GetInputParam())))
		return
	}

	out := &model.RefreshRequest{}
	if trimmed := strings.TrimSpace(in); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), out); err != nil {
			c.Failed(context, fmt.Errorf("failed to unmarshal refresh trigger: %w", err))
			return
		}
	}

	out.CountryISOA3 = strings.ToUpper(strings.TrimSpace(out.CountryISOA3))
	switch out.Scope {
	case model.RefreshRegions:
		if out.CountryISOA3 == "" {
			c.Failed(context, errors.New("regions refresh requires country_iso_a3"))
			return
		}
	default:
		out.Scope = model.RefreshCountries
		out.CountryISOA3 = ""
	}

	c.Succeeded(context)
	context.Add(c.GetOutputParam(), out)
}
