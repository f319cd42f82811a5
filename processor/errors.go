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

package processor

import (
	"errors"
	"fmt"
)

// Error is an instruction failure with a stable numeric code. Errors compare
// equal under errors.Is when their codes match, regardless of detail.
type Error struct {
	Code        uint32
	Message     string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrInsufficientFunds is returned, possibly wrapped, by Host.Transfer when
// the source balance is too low
var ErrInsufficientFunds = errors.New("insufficient native balance")

var (
	ErrInvalidAddress = &Error{
		Code:        0,
		Message:     "invalid address",
		Description: "An account address is invalid or passed twice.",
	}
	ErrInvalidRiskScore = &Error{
		Code:        1,
		Message:     "invalid risk score",
		Description: "A risk score is outside the range 0-100.",
	}
	ErrInsufficientStake = &Error{
		Code:        2,
		Message:     "insufficient stake",
		Description: "The stake is below the required minimum.",
	}
	ErrReportAlreadyExists = &Error{
		Code:        3,
		Message:     "report already exists",
		Description: "The target record already holds a report.",
	}
	ErrNotAuthorized = &Error{
		Code:        4,
		Message:     "not authorized",
		Description: "A required signer is missing or lacks the required privilege.",
	}
	ErrInvalidReportData = &Error{
		Code:        5,
		Message:     "invalid report data",
		Description: "Report fields are out of range.",
	}
	ErrInsufficientReputation = &Error{
		Code:        6,
		Message:     "insufficient reputation",
		Description: "The reporter reputation is below the minimum.",
	}
	ErrTimeLockActive = &Error{
		Code:        7,
		Message:     "time lock active",
		Description: "The report cannot be edited before its time-lock ends.",
	}
	ErrInvalidVoteWeight = &Error{
		Code:        8,
		Message:     "invalid vote weight",
		Description: "The computed vote weight is invalid.",
	}
	ErrReportLimitExceeded = &Error{
		Code:        9,
		Message:     "report limit exceeded",
		Description: "The reporter has reached the report limit for the current window.",
	}
	ErrCooldownActive = &Error{
		Code:        10,
		Message:     "cooldown active",
		Description: "The reporter must wait for the cooldown to end.",
	}
	ErrInsufficientTokenBalance = &Error{
		Code:        11,
		Message:     "insufficient token balance",
		Description: "The token balance is too low.",
	}
	ErrInvalidTokenMint = &Error{
		Code:        12,
		Message:     "invalid token mint",
		Description: "The supplied token mint does not match the configuration.",
	}
	ErrStakingDisabled = &Error{
		Code:        13,
		Message:     "staking disabled",
		Description: "Token staking is disabled in the configuration.",
	}
	ErrInvalidStakeAmount = &Error{
		Code:        14,
		Message:     "invalid stake amount",
		Description: "The stake amount or lock duration is invalid.",
	}
	ErrStakeLocked = &Error{
		Code:        15,
		Message:     "stake locked",
		Description: "The stake cannot be withdrawn before its lock ends.",
	}
	ErrInvalidRewardCalculation = &Error{
		Code:        16,
		Message:     "invalid reward calculation",
		Description: "There are no rewards to claim.",
	}
	ErrTreasuryMismatch = &Error{
		Code:        17,
		Message:     "treasury mismatch",
		Description: "The supplied treasury does not match the configuration.",
	}
	ErrInvalidBatchReport = &Error{
		Code:        18,
		Message:     "invalid batch report",
		Description: "The batch size is outside the allowed range.",
	}
	ErrBatchVerificationPending = &Error{
		Code:        19,
		Message:     "batch verification pending",
		Description: "The batch is not pending verification.",
	}
	ErrAddressAlreadyBlacklisted = &Error{
		Code:        20,
		Message:     "address already blacklisted",
		Description: "The address has already been blacklisted.",
	}
	ErrInvalidBlacklistOperation = &Error{
		Code:        21,
		Message:     "invalid blacklist operation",
		Description: "The blacklist operation is invalid.",
	}
	ErrHistoryUpdateFailed = &Error{
		Code:        22,
		Message:     "history update failed",
		Description: "The history record belongs to a different address.",
	}
	ErrInvalidInstruction = &Error{
		Code:        100,
		Message:     "invalid instruction",
		Description: "The instruction data is empty or carries an unknown opcode.",
	}
	ErrMalformedPayload = &Error{
		Code:        101,
		Message:     "malformed payload",
		Description: "The instruction payload could not be decoded.",
	}
	ErrNotEnoughAccountKeys = &Error{
		Code:        102,
		Message:     "not enough account keys",
		Description: "The instruction has fewer accounts than its opcode requires.",
	}
	ErrInvalidRecordData = &Error{
		Code:        103,
		Message:     "invalid record data",
		Description: "A stored record could not be decoded.",
	}
	ErrUninitializedRecord = &Error{
		Code:        104,
		Message:     "uninitialized record",
		Description: "A required record does not exist.",
	}
	ErrHostFailure = &Error{
		Code:        105,
		Message:     "host failure",
		Description: "A host capability returned an error.",
	}
)

// AllErrors returns every defined error, ordered by code
func AllErrors() []*Error {
	return []*Error{
		ErrInvalidAddress,
		ErrInvalidRiskScore,
		ErrInsufficientStake,
		ErrReportAlreadyExists,
		ErrNotAuthorized,
		ErrInvalidReportData,
		ErrInsufficientReputation,
		ErrTimeLockActive,
		ErrInvalidVoteWeight,
		ErrReportLimitExceeded,
		ErrCooldownActive,
		ErrInsufficientTokenBalance,
		ErrInvalidTokenMint,
		ErrStakingDisabled,
		ErrInvalidStakeAmount,
		ErrStakeLocked,
		ErrInvalidRewardCalculation,
		ErrTreasuryMismatch,
		ErrInvalidBatchReport,
		ErrBatchVerificationPending,
		ErrAddressAlreadyBlacklisted,
		ErrInvalidBlacklistOperation,
		ErrHistoryUpdateFailed,
		ErrInvalidInstruction,
		ErrMalformedPayload,
		ErrNotEnoughAccountKeys,
		ErrInvalidRecordData,
		ErrUninitializedRecord,
		ErrHostFailure,
	}
}

// wrapErr returns a copy of base carrying detail
func wrapErr(base *Error, detail error) *Error {
	if detail == nil {
		return base
	}
	return &Error{
		Code:        base.Code,
		Message:     base.Message,
		Description: base.Description,
		Err:         detail,
	}
}

// ErrorCode returns the code of the first *Error in err's chain
func ErrorCode(err error) (uint32, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
