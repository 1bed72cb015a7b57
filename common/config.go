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

package common

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/kthomas/go-logger"
)

const defaultLedgerCommitmentCurve = "bn254"
const defaultWitnessFetchTimeout = time.Second * 5
const defaultNatsTranscriptSubjectPrefix = "matchledger.transcript"

var (
	// Log is the configured logger
	Log *logger.Logger

	// LedgerCommitmentCurve is the curve whose MiMC hash commits ledger state and transcripts
	LedgerCommitmentCurve string

	// WitnessFetchTimeout bounds a single witness fetch when the timeout provider is used
	WitnessFetchTimeout time.Duration

	// NatsURL is the optional NATS endpoint public transcripts are dispatched to
	NatsURL *string

	// NatsTranscriptSubjectPrefix is the subject prefix for dispatched transcripts
	NatsTranscriptSubjectPrefix string
)

func init() {
	godotenv.Load()

	requireLogger()
	requireLedgerConfig()
	requireNatsConfig()
}

func requireLogger() {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = "INFO"
	}

	var endpoint *string
	if os.Getenv("SYSLOG_ENDPOINT") != "" {
		endpt := os.Getenv("SYSLOG_ENDPOINT")
		endpoint = &endpt
	}

	Log = logger.NewLogger("matchledger", lvl, endpoint)
}

func requireLedgerConfig() {
	LedgerCommitmentCurve = strings.ToLower(os.Getenv("LEDGER_COMMITMENT_CURVE"))
	if LedgerCommitmentCurve == "" {
		LedgerCommitmentCurve = defaultLedgerCommitmentCurve
	}

	WitnessFetchTimeout = defaultWitnessFetchTimeout
	if os.Getenv("WITNESS_FETCH_TIMEOUT") != "" {
		timeout, err := time.ParseDuration(os.Getenv("WITNESS_FETCH_TIMEOUT"))
		if err != nil {
			Log.Warningf("failed to parse WITNESS_FETCH_TIMEOUT; using default %s; %s", defaultWitnessFetchTimeout, err.Error())
		} else {
			WitnessFetchTimeout = timeout
		}
	}
}

func requireNatsConfig() {
	NatsURL = StringOrNil(os.Getenv("NATS_URL"))

	NatsTranscriptSubjectPrefix = os.Getenv("NATS_TRANSCRIPT_SUBJECT_PREFIX")
	if NatsTranscriptSubjectPrefix == "" {
		NatsTranscriptSubjectPrefix = defaultNatsTranscriptSubjectPrefix
	}
}
