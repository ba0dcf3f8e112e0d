// SPDX-License-Identifier: MPL-2.0

// Package selfupgrade provides the upgrade-self command, which updates a
// git-checked-out tool directory in place.
package selfupgrade
