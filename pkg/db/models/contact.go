package models

type Contact struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"column:user_id;not null;index"`
	City      string `gorm:"column:city;size:50;not null;default:''"`
	Street    string `gorm:"column:street;size:100;not null;default:''"`
	House     string `gorm:"column:house;size:15;not null;default:''"`
	Structure string `gorm:"column:structure;size:15;not null;default:''"`
	Building  string `gorm:"column:building;size:15;not null;default:''"`
	Apartment string `gorm:"column:apartment;size:15;not null;default:''"`
	Phone     string `gorm:"column:phone;size:20;not null;default:''"`
}
