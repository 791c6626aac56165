package audit

const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Sign-in and account events, category auth.
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLoginRateLimited         = "login_rate_limited"
	EventLogout                   = "logout"
	EventAdminRegistered          = "admin_registered"
)

// Back-office changes, category admin.
const (
	EventSettingsUpdated          = "settings_updated"
	EventSettingsAssetUploaded    = "settings_asset_uploaded"
	EventPageCreated              = "page_created"
	EventPageUpdated              = "page_updated"
	EventPageDeleted              = "page_deleted"
	EventSectionAdded             = "section_added"
	EventSectionUpdated           = "section_updated"
	EventSectionRemoved           = "section_removed"
	EventContactSynced            = "contact_synced"
	EventServiceCreated           = "service_created"
	EventServiceUpdated           = "service_updated"
	EventServiceDeleted           = "service_deleted"
	EventReservationStatusChanged = "reservation_status_changed"
	EventMediaUploaded            = "media_uploaded"
	EventMediaUpdated             = "media_updated"
	EventMediaDeleted             = "media_deleted"
)
