// ./constants.go
package geomag

/*
Package geomag provides constants for evaluating geomagnetic field models.

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.

Authorship:
Mohammad Shafiee authored this Go code.
*/

// Constants for geomag package.
//
// This file defines the raw integer codes of the coordinate systems and
// evaluation modes. The typed CoordSystem and Mode values in api.go are
// defined from these codes, so hosts exchanging plain integers can rely on
// them staying fixed.

// Coordinate system codes used by CoordSystem.
const (
	CT_GEODETIC_ABOVE_WGS84 = 0 // Geodetic latitude (deg), longitude (deg), height above the WGS84 ellipsoid (km)
	CT_GEODETIC_ABOVE_EGM96 = 1 // Geodetic latitude (deg), longitude (deg), height above the EGM96 geoid (km)
	CT_GEOCENTRIC_SPHERICAL = 2 // Geocentric latitude (deg), longitude (deg), radius (km)
	CT_GEOCENTRIC_CARTESIAN = 3 // Geocentric Cartesian x, y, z (km)
	ct_count                = 4 // Number of supported coordinate systems
)

// Evaluation mode codes used by Mode. The values are bit flags, so the
// combined mode is the bitwise union of the potential and gradient flags.
const (
	GM_INVALID                = 0x0 // No quantity requested
	GM_POTENTIAL              = 0x1 // Scalar potential
	GM_GRADIENT               = 0x2 // Field vector (negative potential gradient)
	GM_POTENTIAL_AND_GRADIENT = 0x3 // Both potential and field vector
)

// Model defaults.
const (
	// RADIUS is the default reference (Earth mean) radius in km.
	RADIUS = 6371.2
	// MAX_ARRAY_NDIM is the highest dimension of a point array accepted by the batch evaluator.
	MAX_ARRAY_NDIM = 16
	// maxTableLength bounds the length of a single recurrence table; larger
	// requests are refused as allocation failures.
	maxTableLength = 1 << 26
)
