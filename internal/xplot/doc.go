/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package xplot interprets xplot plot scripts.
// A Reader tokenizes the line-oriented script into Commands; an Aggregator
// folds them into a Scene in a single pass, joining line segments that share
// endpoints into polylines and batching markers by colour and style. The
// resulting Scene is fully resolved: renderers need no palette lookups or
// other interpretation of their own.
package xplot
