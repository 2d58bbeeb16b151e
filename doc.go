// Copyright 2025 Ian Lewis
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

// Package normalizer implements a library for normalizing translated Oracle
// JDK documentation archives so that they display correctly in an IDE's
// documentation viewer.
//
// A documentation archive is a ZIP file. Each entry is copied to a new
// archive in order, under the same name:
//  1. Entries ending in .html are normalized by the markup package. The
//     metrics script is removed, merged translation spans are unwrapped, and
//     the machine translation notice is moved into the footer.
//  2. Entries ending in .css have their font-family declarations rewritten
//     by the stylesheet package if a font override is given.
//  3. All other entries are copied unchanged, including their compressed
//     data.
package normalizer
