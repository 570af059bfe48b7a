// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package update carries item output from every runner to the single line printer.
//
// Each runner owns a Sender bound to its position. The printer drains the Queue
// through its Source interface until every Sender has been closed.
package update
