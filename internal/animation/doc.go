// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides previews of LED matrix frame streams as
// animated GIFs and as text.
package animation
