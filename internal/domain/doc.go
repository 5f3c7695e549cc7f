// Package domain models University of Wyoming upper-air sounding reports and
// the temperature inversion layers detected in them.
//
// # Data Source
//
// Soundings come from the University of Wyoming atmospheric sounding archive
// (http://weather.uwyo.edu/upperair/sounding.html), served by a CGI endpoint
// as one HTML page per station/month. Each observation appears as an <h2>
// header naming the station and synoptic time followed by a <pre> block
// holding a fixed-width text table of measurement levels.
//
// # Report Format Conventions
//
// Header time format:
//
//	"<station> Observations at HHZ DD MON YYYY"
//	e.g. "16622 Thessaloniki (Airport) Observations at 00Z 15 Jan 2021".
//	Only the 00Z (night) and 12Z (day) synoptic hours occur in this archive.
//
// Table layout:
//
//	Eleven 7-character columns, no delimiters:
//	PRES HGHT TEMP DWPT RELH MIXR DRCT SKNT THTA THTE THTV
//	(pressure hPa, geopotential height m, temperature °C, dew point °C,
//	relative humidity %, mixing ratio g/kg, wind direction deg, wind speed
//	knots, potential / equivalent potential / virtual potential temperature K).
//	The first and last lines of a block are framing; lines containing "--"
//	are horizontal rules; the line after the column header carries units.
//	Blank cells mean the quantity was not measured at that level.
//
// Wind speed is stored in m/s: knots × 0.51444444444444, rounded to two
// decimals at parse time.
//
// A known artifact of the archive: some pages emit twice as many <pre> blocks
// as <h2> headers (each table is followed by a station-metadata block).
// [SplitReport] compensates by taking every other block.
//
// # Inversion Detection
//
// An inversion layer is a maximal run of consecutive levels whose temperature
// does not decrease with height, spanning at least two levels, with strictly
// positive temperature and height gain overall. Layers based above 1000 m are
// not reported. Layers based at or below 100 m are classified as ground
// inversions; observation hour 0 marks a night event, hour 12 a day event.
package domain
