package builder

// DefaultPython is the interpreter used when none is configured
const DefaultPython = "python"

// Script file names
const (
	LoginScript         = "Login.py"
	SyncScript          = "getFabrik.py"
	ItemsScript         = "getItems.py"
	ExportScript        = "export.py"
	ExportProductScript = "exportProdukt.py"
	ExportListerScript  = "exportLister.py"
	HTMLScript          = "makeHTML.py"
	KillScript          = "killFabriks.py"
	CleanScript         = "clean_data.py"
	PipelineScript      = "main.py"
)

// Form field names shared by the builders
const (
	FieldAccount            = "account"
	FieldVerbose            = "verbose"
	FieldTarget             = "target"
	FieldDataset            = "dataset"
	FieldLimit              = "limit"
	FieldVariant            = "variant"
	FieldFactoryIDs         = "factory_ids"
	FieldFactoryNames       = "factory_names"
	FieldUseSelection       = "use_selection"
	FieldOutputDir          = "output_dir"
	FieldSkipExisting       = "skip_existing"
	FieldRefreshExisting    = "refresh_existing"
	FieldDryRun             = "dry_run"
	FieldDefinitionID       = "definition_id"
	FieldExportFormatID     = "export_format_id"
	FieldExpprod            = "expprod"
	FieldExportEncoding     = "export_encoding"
	FieldSaveExportEncoding = "save_export_encoding"
	FieldInputBase          = "input_base"
	FieldOutputBase         = "output_base"
	FieldOverwrite          = "overwrite"
	FieldRunNow             = "run_now"
	FieldForce              = "force"
	FieldCleanTarget        = "clean_target"
	FieldListTargets        = "list_targets"
	FieldSteps              = "steps"
	FieldSkip               = "skip"
	FieldLogLevel           = "log_level"
)

// Script defaults, mirrored from each script's own argument defaults
const (
	DefaultSyncTarget         = "all"
	DefaultItemsDataset       = "all"
	DefaultOutputDir          = "CSVDATA"
	DefaultExpprod            = "3"
	DefaultExportEncoding     = "1"
	DefaultSaveExportEncoding = "1"
	DefaultInputBase          = "CSVDATA"
	DefaultOutputBase         = "readyhtml"
	DefaultLogLevel           = "INFO"
)

// Export variants
const (
	VariantExport  = "export"
	VariantProduct = "product"
	VariantLister  = "lister"
)

var (
	Accounts      = []string{"JV", "XL"}
	SyncTargets   = []string{"catalog", "lister", "all"}
	ItemsDatasets = []string{"product", "lister", "all"}
	LogLevels     = []string{"DEBUG", "INFO", "WARNING", "ERROR"}
	PipelineSteps = []string{"login", "factories", "items", "product-export", "lister-export"}
	CleanTargets  = []string{
		"csv_jv_l", "csv_jv_p", "csv_xl_l", "csv_xl_p",
		"db",
		"fabriks_jv_l", "fabriks_jv_p", "fabriks_xl_l", "fabriks_xl_p",
		"logs",
		"items_jv_l", "items_jv_p", "items_xl_l", "items_xl_p",
		"sessions",
		"readyhtml_jv", "readyhtml_xl",
		"readyjson_jv", "readyjson_xl",
	}
)
