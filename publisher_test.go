// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMessage struct {
	topic   string
	payload []byte
}

type fakeSink struct {
	messages []recordedMessage
	err      error
	closed   bool
}

func (s *fakeSink) Publish(topic string, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, recordedMessage{topic: topic, payload: payload})
	return nil
}

func (s *fakeSink) Close() {
	s.closed = true
}

func TestPublisherPublishResult(t *testing.T) {
	sink := &fakeSink{}
	publisher := newPublisherWithSink(sink, "home/ecobill/", NewDiscardLogger())

	result := sampleResult(t)
	require.NoError(t, publisher.PublishResult(result))
	require.Len(t, sink.messages, 2)

	assert.Equal(t, "home/ecobill/forecast/state", sink.messages[0].topic)
	var forecast ForecastState
	require.NoError(t, json.Unmarshal(sink.messages[0].payload, &forecast))
	assert.Equal(t, 245.67, forecast.PredictedUsageKWh)
	assert.Equal(t, 1474.02, forecast.PredictedBill)
	assert.Equal(t, 4, forecast.NextMonth)
	assert.Equal(t, "2024-03-05T10:00:00Z", forecast.UpdatedAt)

	assert.Equal(t, "home/ecobill/tips/state", sink.messages[1].topic)
	var tips TipsState
	require.NoError(t, json.Unmarshal(sink.messages[1].payload, &tips))
	assert.Equal(t, "Medium", tips.Category)
	assert.Len(t, tips.Tips, 5)

	publisher.Close()
	assert.True(t, sink.closed)
}

func TestPublisherSkipsMissingSections(t *testing.T) {
	sink := &fakeSink{}
	publisher := newPublisherWithSink(sink, "ecobill", NewDiscardLogger())

	result := sampleResult(t)
	result.Forecast = nil
	require.NoError(t, publisher.PublishResult(result))
	require.Len(t, sink.messages, 1)
	assert.Equal(t, "ecobill/tips/state", sink.messages[0].topic)
}

func TestPublisherError(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	publisher := newPublisherWithSink(sink, "ecobill", NewDiscardLogger())

	err := publisher.PublishResult(sampleResult(t))
	var publishErr *PublishError
	require.True(t, errors.As(err, &publishErr))
	assert.Equal(t, "ecobill/forecast/state", publishErr.Topic)
	assert.ErrorContains(t, err, "broker down")
}

func TestNewPublisherRequiresEnabled(t *testing.T) {
	_, err := NewPublisher(MQTTConfig{}, NewDiscardLogger())
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewPublisher(MQTTConfig{Enabled: true}, NewDiscardLogger())
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "mqtt.broker", cfgErr.Field)
}
