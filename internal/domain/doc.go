// Package domain defines the study-group entities shared by the store and the
// feature services, together with their closed enumerations and the failure
// kinds every operation reports.
package domain
