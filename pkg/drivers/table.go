package drivers

// builtinDrivers lists every known format in display order. Only CSV and
// GeoJSON carry reader/writer constructors today; the rest document the
// roadmap the way GDAL's driver listing does.
func builtinDrivers() []*Driver {
	return []*Driver{
		{
			ShortName:    "GeoJSON",
			LongName:     "GeoJSON",
			Capabilities: Capabilities{Info: Supported, Read: Supported, Write: Supported},
			newReader:    func() Reader { return geojsonReader{} },
			newWriter:    func() Writer { return geojsonWriter{} },
		},
		{
			ShortName:    "CSV",
			LongName:     "Comma Separated Value (.csv)",
			Capabilities: Capabilities{Info: Supported, Read: Supported, Write: Supported},
			newReader:    func() Reader { return csvReader{} },
			newWriter:    func() Writer { return csvWriter{} },
		},
		{
			ShortName:    "GeoJSONSeq",
			LongName:     "GeoJSONSeq: sequence of GeoJSON features",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName:    "ESRI Shapefile",
			LongName:     "ESRI Shapefile / DBF",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName:    "GPKG",
			LongName:     "GeoPackage vector",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName:    "FlatGeobuf",
			LongName:     "FlatGeobuf",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName:    "Parquet",
			LongName:     "(Geo)Parquet",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName:    "Arrow",
			LongName:     "(Geo)Arrow IPC File Format / Stream",
			Capabilities: Capabilities{Info: Planned, Read: Planned, Write: Planned},
		},
		{
			ShortName: "GML",
			LongName:  "Geography Markup Language",
		},
		{
			ShortName: "KML",
			LongName:  "Keyhole Markup Language",
		},
		{
			ShortName: "GPX",
			LongName:  "GPS Exchange Format",
		},
		{
			ShortName: "DXF",
			LongName:  "AutoCAD DXF",
		},
		{
			ShortName: "FileGDB",
			LongName:  "ESRI File Geodatabase (FileGDB)",
		},
		{
			ShortName: "PostgreSQL",
			LongName:  "PostgreSQL/PostGIS",
		},
		{
			ShortName: "MySQL",
			LongName:  "MySQL",
		},
		{
			ShortName: "SQLite",
			LongName:  "SQLite / Spatialite",
		},
		{
			ShortName: "WFS",
			LongName:  "OGC WFS (Web Feature Service)",
		},
		{
			ShortName: "OAPIF",
			LongName:  "OGC API - Features",
		},
	}
}
