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
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQoS            = 1
)

// messageSink delivers one retained message to a topic
type messageSink interface {
	Publish(topic string, payload []byte) error
	Close()
}

// mqttSink publishes through a connected paho client
type mqttSink struct {
	client mqtt.Client
}

func (s *mqttSink) Publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, mqttQoS, true, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("timed out after %s", mqttPublishTimeout)
	}
	return token.Error()
}

func (s *mqttSink) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// Publisher sends forecast and tips state to an MQTT broker as JSON
type Publisher struct {
	sink        messageSink
	topicPrefix string
	logger      *Logger
}

// NewPublisher connects to the configured broker
func NewPublisher(cfg MQTTConfig, logger *Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, &ConfigError{Field: "mqtt.enabled", Message: "MQTT publishing is not enabled in config"}
	}
	if cfg.Broker == "" {
		return nil, &ConfigError{Field: "mqtt.broker", Message: "MQTT broker address is required when enabled"}
	}

	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, &PublishError{Topic: broker, Err: fmt.Errorf("connecting to MQTT broker: %w", token.Error())}
	}

	logger.Debug("Connected to MQTT broker", "broker", broker)
	return newPublisherWithSink(&mqttSink{client: client}, cfg.TopicPrefix, logger), nil
}

func newPublisherWithSink(sink messageSink, topicPrefix string, logger *Logger) *Publisher {
	return &Publisher{
		sink:        sink,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		logger:      logger.WithComponent("publisher"),
	}
}

// ForecastState is the payload published for a forecast
type ForecastState struct {
	PredictedUsageKWh float64 `json:"predicted_usage_kWh"`
	PredictedBill     float64 `json:"predicted_bill"`
	NextMonth         int     `json:"next_month"`
	MAEUnits          float64 `json:"mae_units"`
	R2Score           float64 `json:"r2_score"`
	UpdatedAt         string  `json:"updated_at"`
}

// TipsState is the payload published for a usage classification
type TipsState struct {
	Category  string   `json:"category"`
	Tips      []string `json:"tips"`
	UpdatedAt string   `json:"updated_at"`
}

// Topic returns the full topic name for a state kind
func (p *Publisher) Topic(kind string) string {
	return fmt.Sprintf("%s/%s/state", p.topicPrefix, kind)
}

// PublishResult publishes the forecast and tips of an analysis, whichever are present
func (p *Publisher) PublishResult(result *AnalysisResult) error {
	updated := result.GeneratedAt.UTC().Format(time.RFC3339)

	if f := result.Forecast; f != nil {
		state := ForecastState{
			PredictedUsageKWh: f.PredictedUsageKWh,
			PredictedBill:     f.PredictedBill,
			NextMonth:         f.NextMonth,
			MAEUnits:          f.MAEUnits,
			R2Score:           f.R2Score,
			UpdatedAt:         updated,
		}
		if err := p.publishJSON(p.Topic("forecast"), state); err != nil {
			return err
		}
	}

	if t := result.Tips; t != nil {
		state := TipsState{Category: t.Category, Tips: t.Tips, UpdatedAt: updated}
		if err := p.publishJSON(p.Topic("tips"), state); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return &PublishError{Topic: topic, Err: fmt.Errorf("encoding payload: %w", err)}
	}
	if err := p.sink.Publish(topic, payload); err != nil {
		return &PublishError{Topic: topic, Err: err}
	}
	p.logger.Info("Published state", "topic", topic, "bytes", len(payload))
	return nil
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	p.sink.Close()
}
