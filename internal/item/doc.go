// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package item defines the resolved specification of a single status line item:
// the command it runs, the shell it runs under, the position it occupies in the
// rendered line, and the policy that decides how often it is executed.
package item
