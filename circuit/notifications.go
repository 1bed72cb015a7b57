/*
 * Copyright 2017-2022 Provide Technologies Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package circuit

import (
	"encoding/json"
	"fmt"

	natsutil "github.com/kthomas/go-natsutil"
	uuid "github.com/kthomas/go.uuid"
	"github.com/nats-io/nats.go"
	"github.com/provideplatform/matchledger/common"
)

// TranscriptSummary is the public notification emitted for a committed operation
type TranscriptSummary struct {
	TranscriptID   uuid.UUID `json:"transcript_id"`
	Operation      string    `json:"operation"`
	Nonce          uint64    `json:"nonce"`
	Instructions   int       `json:"instructions"`
	TranscriptRoot *string   `json:"transcript_root"`
	LedgerRoot     *string   `json:"ledger_root"`
}

// Dispatcher publishes transcript summaries; private transcripts are never dispatched
type Dispatcher interface {
	Dispatch(summary *TranscriptSummary) error
}

const natsTranscriptStream = "matchledger"

// NatsDispatcher publishes transcript summaries to <prefix>.<operation> over the shared
// NATS jetstream connection
type NatsDispatcher struct {
	prefix string
}

// NewNatsDispatcher establishes the shared NATS connection and the jetstream stream
// covering prefix
func NewNatsDispatcher(prefix string) *NatsDispatcher {
	if prefix == "" {
		prefix = common.NatsTranscriptSubjectPrefix
	}

	natsutil.EstablishSharedNatsConnection(nil)
	natsutil.NatsCreateStream(natsTranscriptStream, []string{
		fmt.Sprintf("%s.>", prefix),
	})

	common.Log.Debugf("configured NATS transcript dispatch on %s.>", prefix)
	return &NatsDispatcher{
		prefix: prefix,
	}
}

// NatsDispatcherFactory returns a dispatcher for the configured NATS_URL; the returned
// Dispatcher is nil if none is configured
func NatsDispatcherFactory() Dispatcher {
	if common.NatsURL == nil {
		common.Log.Debug("NATS_URL not configured; transcript dispatch disabled")
		return nil
	}
	return NewNatsDispatcher(common.NatsTranscriptSubjectPrefix)
}

// Subject returns the subject summaries of operation are published to
func (d *NatsDispatcher) Subject(operation string) string {
	return fmt.Sprintf("%s.%s", d.prefix, operation)
}

// Publish publishes summary and returns the jetstream ack
func (d *NatsDispatcher) Publish(summary *TranscriptSummary) (*nats.PubAck, error) {
	if d == nil {
		return nil, fmt.Errorf("failed to dispatch transcript summary; nil dispatcher")
	}
	if summary == nil || summary.Operation == "" {
		return nil, fmt.Errorf("failed to dispatch transcript summary; invalid summary")
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript summary; %w", err)
	}
	return natsutil.NatsJetstreamPublish(d.Subject(summary.Operation), payload)
}

// Dispatch implements Dispatcher
func (d *NatsDispatcher) Dispatch(summary *TranscriptSummary) error {
	_, err := d.Publish(summary)
	return err
}

// summarize returns the public summary of a committed operation
func (c *Contract) summarize(result *Result) (*TranscriptSummary, error) {
	nonce, err := result.Snapshot.Nonce()
	if err != nil {
		return nil, err
	}
	transcriptRoot, err := result.Transcript.Root(c.curve)
	if err != nil {
		return nil, err
	}
	state, err := result.Snapshot.Commit(c.curve)
	if err != nil {
		return nil, err
	}

	return &TranscriptSummary{
		TranscriptID:   result.Transcript.ID,
		Operation:      result.Operation,
		Nonce:          nonce,
		Instructions:   result.Transcript.Len(),
		TranscriptRoot: transcriptRoot,
		LedgerRoot:     state.Root,
	}, nil
}

// dispatch publishes the summary of result; failures are logged and never abort the
// operation, which has already committed
func (c *Contract) dispatch(result *Result) {
	if c.dispatcher == nil {
		return
	}

	summary, err := c.summarize(result)
	if err != nil {
		common.Log.Warningf("failed to summarize %s transcript %s for dispatch; %s", result.Operation, result.Transcript.ID, err.Error())
		return
	}
	if err := c.dispatcher.Dispatch(summary); err != nil {
		common.Log.Warningf("failed to dispatch %s transcript %s; %s", result.Operation, result.Transcript.ID, err.Error())
		return
	}
	common.Log.Tracef("dispatched %s transcript %s", result.Operation, result.Transcript.ID)
}
